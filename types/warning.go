package types

import (
	"fmt"
	"log/slog"
)

// WarningKind 物理模型警告类别
type WarningKind int

const (
	WarnNonHermitian WarningKind = iota // 耦合算符非厄米
)

func (k WarningKind) String() string {
	switch k {
	case WarnNonHermitian:
		return "non-hermitian-coupling"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning 非致命的物理模型警告，不影响计算流程
type Warning struct {
	Kind    WarningKind
	Index   int // 相关耦合算符序号
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%d]: %s", w.Kind, w.Index, w.Message)
}

// Log 以 WARN 级别输出到日志
func (w Warning) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(w.Message, "kind", w.Kind.String(), "index", w.Index)
}
