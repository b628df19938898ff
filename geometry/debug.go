package geometry

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将几何结果输出为 JSON，便于调试或比对。
func WriteDebugJSON(g Geometry, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
