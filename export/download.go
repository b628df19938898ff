package export

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/logoforge/capture"
)

// Naming 为导出格式生成文件名。
type Naming func(format capture.Format) string

// LogoName 返回 "logo.<ext>"。
func LogoName(format capture.Format) string { return "logo." + format.Ext() }

// TimestampedName 返回 "<prefix>-<毫秒时间戳>.<ext>" 形式的命名函数，now 为空时使用 time.Now。
func TimestampedName(prefix string, now func() time.Time) Naming {
	if now == nil {
		now = time.Now
	}
	return func(format capture.Format) string {
		return prefix + "-" + strconv.FormatInt(now().UnixMilli(), 10) + "." + format.Ext()
	}
}

// DataURI 将文件内容编码为 base64 数据 URI。
func DataURI(format capture.Format, data []byte) string {
	return "data:" + format.MIME() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI 解析 base64 数据 URI，返回媒体类型与内容。
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("不是数据 URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("数据 URI 缺少内容")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mime, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("解码数据 URI 失败: %w", err)
	}
	return mime, data, nil
}

// FileDownloader 把下载写入目录 Dir（为空时为当前目录）。
type FileDownloader struct {
	Dir string
}

// Download 实现 Downloader。
func (d FileDownloader) Download(filename, dataURI string) error {
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("非法文件名 %q", filename)
	}
	_, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return err
	}
	if d.Dir != "" {
		if err := os.MkdirAll(d.Dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	path := filepath.Join(d.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
