package ppg

// LowPassFilter 单极点指数平滑低通滤波器
// 递推式: y = y + alpha*(x - y)
// 只保留上一个滤波值这一个标量状态，没有其他历史
type LowPassFilter struct {
	alpha float64
	value float64
}

// NewLowPassFilter 创建滤波器，初始状态为 0
// alpha 取值 (0,1)：越大平滑越弱、跟踪越快
func NewLowPassFilter(alpha float64) *LowPassFilter {
	return &LowPassFilter{alpha: alpha}
}

// Update 输入一个原始采样，返回滤波后的值
func (f *LowPassFilter) Update(raw float64) float64 {
	f.value += f.alpha * (raw - f.value)
	return f.value
}

// Value 返回当前滤波值
func (f *LowPassFilter) Value() float64 {
	return f.value
}

// Reset 清零滤波状态
func (f *LowPassFilter) Reset() {
	f.value = 0
}
