package ppg

import "math"

// PeakEvent 表示一次被接受的心跳峰值，按采样序号定位
type PeakEvent struct {
	SampleIndex int
}

// PeakDetector 在滤波后的 IR 信号上做向上穿越阈值检测，带不应期
//
// 穿越条件: prevFiltered < threshold 且 irFiltered >= threshold
// 不应期: 距上一个被接受的峰值必须超过 refractorySamples 个采样
// (严格大于；恰好等于仍在不应期内，与原始实现保持一致)
//
// "尚无峰值" 用显式布尔位表示，不使用数值哨兵，
// 因此第一次真实穿越永远不会被不应期误杀
type PeakDetector struct {
	threshold         float64
	refractorySamples int

	prevFiltered float64
	lastPeak     int
	prevPeak     int
	hasLast      bool
	hasPrev      bool
}

// NewPeakDetector 创建峰值检测器
// refractorySeconds 会按采样率折算为整数个采样
func NewPeakDetector(threshold, refractorySeconds, sampleRate float64) *PeakDetector {
	return &PeakDetector{
		threshold:         threshold,
		refractorySamples: int(math.Round(refractorySeconds * sampleRate)),
	}
}

// Update 输入一个滤波后的采样，返回峰值事件 (如果本采样被接受为峰值)
// 无论是否触发峰值，prevFiltered 都会在末尾无条件更新
func (d *PeakDetector) Update(sampleIndex int, irFiltered float64) (PeakEvent, bool) {
	fired := false

	if d.prevFiltered < d.threshold && irFiltered >= d.threshold {
		// 不应期内的穿越静默忽略，峰值状态不变
		if !d.hasLast || sampleIndex-d.lastPeak > d.refractorySamples {
			d.prevPeak = d.lastPeak
			d.hasPrev = d.hasLast
			d.lastPeak = sampleIndex
			d.hasLast = true
			fired = true
		}
	}

	d.prevFiltered = irFiltered

	if fired {
		return PeakEvent{SampleIndex: sampleIndex}, true
	}
	return PeakEvent{}, false
}

// LastInterval 返回最近两个被接受峰值之间的采样数
// 在观察到第二个峰值之前 ok 为 false
func (d *PeakDetector) LastInterval() (delta int, ok bool) {
	if !d.hasPrev {
		return 0, false
	}
	return d.lastPeak - d.prevPeak, true
}

// RefractorySamples 返回折算后的不应期长度 (采样数)
func (d *PeakDetector) RefractorySamples() int {
	return d.refractorySamples
}
