package types

import "io"

// Recorder 演化过程记录接口
// Record 收到的算符只在调用期间有效，实现方需自行复制所需数据
type Recorder interface {
	Record(t float64, rho *Operator)
	Render(w io.Writer) error
}
