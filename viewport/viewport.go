package viewport

// Breakpoint 是区分紧凑/常规预设的视口宽度阈值（px）。
const Breakpoint = 724

// Class 表示视口类别，由单一观察者计算后作为参数向下传递。
type Class int

const (
	Regular Class = iota
	Compact
)

func (c Class) String() string {
	switch c {
	case Compact:
		return "compact"
	default:
		return "regular"
	}
}

// ClassFor 根据视口宽度给出类别：宽度小于 Breakpoint 视为紧凑。
func ClassFor(width int) Class {
	if width < Breakpoint {
		return Compact
	}
	return Regular
}

// Observer 记录最近一次观测到的视口类别，只在跨越阈值时报告变化。
type Observer struct {
	class Class
	width int
}

// NewObserver 以初始宽度创建观察者。
func NewObserver(width int) *Observer {
	return &Observer{class: ClassFor(width), width: width}
}

// Class 返回当前类别。
func (o *Observer) Class() Class { return o.class }

// Width 返回最近一次观测到的宽度。
func (o *Observer) Width() int { return o.width }

// Observe 记录新的宽度；返回新类别以及是否跨越了阈值。
func (o *Observer) Observe(width int) (Class, bool) {
	o.width = width
	next := ClassFor(width)
	if next == o.class {
		return o.class, false
	}
	o.class = next
	return next, true
}
