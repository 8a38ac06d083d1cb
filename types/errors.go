package types

import (
	"errors"
	"fmt"
)

// 配置错误哨兵值，均可通过 errors.Is 判定
var (
	ErrDimensionMismatch  = errors.New("operator dimension mismatch")
	ErrNotSquare          = errors.New("operator is not square")
	ErrNotHermitian       = errors.New("hamiltonian is not hermitian")
	ErrEigenNotConverged  = errors.New("eigendecomposition did not converge")
	ErrDegenerateSpectrum = errors.New("no nonzero transition frequency, secular cutoff undefined")
	ErrInvalidCutoff      = errors.New("secular cutoff must be positive")
	ErrInvalidTimes       = errors.New("output times must be non-empty and non-decreasing")
	ErrMissingSpectrum    = errors.New("interaction has no spectral density")
)

// ConfigError 输入配置错误（致命，不产生部分结果）
type ConfigError struct {
	Op  string // 出错的组件或步骤
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError 以哨兵错误构造配置错误，format 为附加说明
func NewConfigError(op string, sentinel error, format string, args ...any) *ConfigError {
	if format == "" {
		return &ConfigError{Op: op, Err: sentinel}
	}
	return &ConfigError{Op: op, Err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)}
}
