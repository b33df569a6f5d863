package model

// 容器类型：条目要么属于模板包，要么属于报告工作，二选一
const (
	ContainerPackage = "package"
	ContainerEffort  = "reporting_effort"
)

// ContainerRef 条目容器引用
// 排重与创建逻辑按容器参数化（同一套引擎服务 Package 与 ReportingEffort 两种容器）
type ContainerRef struct {
	Type string // ContainerPackage | ContainerEffort
	ID   string
}

// IsEffort 是否为报告工作容器（决定是否联动创建 Tracker）
func (c ContainerRef) IsEffort() bool { return c.Type == ContainerEffort }
