package ppg

// HREstimator 把峰-峰间隔换算成瞬时心率，做合理性检查后指数平滑
//
// 瞬时值落在 (minBPM, maxBPM) 开区间之外时整体拒绝：
// 瞬时和平滑状态都保持原样，等价于这次峰值从未发生过
type HREstimator struct {
	sampleRate float64
	minBPM     float64
	maxBPM     float64
	alpha      float64

	instantaneous float64
	smoothed      float64
	hasEstimate   bool
}

// NewHREstimator 创建心率估计器，初始心率为 0
func NewHREstimator(sampleRate, minBPM, maxBPM, alpha float64) *HREstimator {
	return &HREstimator{
		sampleRate: sampleRate,
		minBPM:     minBPM,
		maxBPM:     maxBPM,
		alpha:      alpha,
	}
}

// OnPeakInterval 输入最近两个峰值之间的采样数 (由构造保证严格为正)
// 返回当前平滑心率以及本次瞬时值是否被接受
func (h *HREstimator) OnPeakInterval(deltaSamples int) (smoothedBPM float64, accepted bool) {
	periodSec := float64(deltaSamples) / h.sampleRate
	instBPM := 60.0 / periodSec

	// 开区间检查，边界值本身视为越界
	if instBPM <= h.minBPM || instBPM >= h.maxBPM {
		return h.smoothed, false
	}

	h.instantaneous = instBPM
	h.smoothed += h.alpha * (instBPM - h.smoothed)
	h.hasEstimate = true
	return h.smoothed, true
}

// SmoothedBPM 返回当前平滑心率；在出现第一个被接受的间隔之前 ok 为 false
func (h *HREstimator) SmoothedBPM() (bpm float64, ok bool) {
	return h.smoothed, h.hasEstimate
}

// InstantaneousBPM 返回最近一次被接受的瞬时心率
func (h *HREstimator) InstantaneousBPM() float64 {
	return h.instantaneous
}
