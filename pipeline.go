package ppg

import "log"

// Pipeline 按采样顺序串起整条处理链:
// 行重组 -> 解析 -> 低通滤波 -> 峰值检测 -> 心率估计 -> 写出
//
// 所有可变状态都归属调用 ProcessChunk 的那个执行上下文，
// 没有内部并发，处理顺序即到达顺序
type Pipeline struct {
	cfg *Config

	reassembler *LineReassembler
	filter      *LowPassFilter
	detector    *PeakDetector
	estimator   *HREstimator

	sink     WaveformSink
	debugger SignalDebugger
	monitor  *PulseMonitor // 可选，为 nil 时不投喂

	sampleIndex int // 只统计解析成功的记录

	// 统计
	malformedCount int

	// OnHeartRate 在平滑心率被更新时回调 (至少需要两个合理峰值)
	OnHeartRate func(bpm float64)
}

// NewPipeline 创建流水线。sink 不能为 nil；debugger 为 nil 时使用空实现
func NewPipeline(cfg *Config, sink WaveformSink, debugger SignalDebugger) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if debugger == nil {
		debugger = &NoOpDebugger{}
	}

	p := &Pipeline{
		cfg:         cfg,
		reassembler: NewLineReassembler(cfg.Reassembler.BufferSize),
		filter:      NewLowPassFilter(cfg.DSP.FilterAlpha),
		detector:    NewPeakDetector(cfg.DSP.PeakThreshold, cfg.DSP.RefractorySeconds, cfg.DSP.SampleRate),
		estimator:   NewHREstimator(cfg.DSP.SampleRate, cfg.DSP.MinBPM, cfg.DSP.MaxBPM, cfg.DSP.HRAlpha),
		sink:        sink,
		debugger:    debugger,
	}

	p.reassembler.OnOverflow = func(discarded int) {
		log.Printf("Buffer overflow, discarding %d bytes", discarded)
	}

	return p
}

// SetMonitor 挂接后台频谱监视器 (可选)
func (p *Pipeline) SetMonitor(m *PulseMonitor) {
	p.monitor = m
}

// ProcessChunk 处理一块新到达的字节 (长度可以为 0)
// 返回非 nil 错误仅当 sink 写入失败，此时流水线必须停止
func (p *Pipeline) ProcessChunk(chunk []byte) error {
	for _, record := range p.reassembler.Feed(chunk) {
		red, ir, err := ParseRecord(record)
		if err != nil {
			// 坏记录跳过：不占用序号，不触碰滤波/峰值状态，不写出
			p.malformedCount++
			log.Printf("Skipping malformed record: %q", record)
			continue
		}

		sample := Sample{Red: red, IR: ir, Index: p.sampleIndex}
		p.sampleIndex++

		if err := p.processSample(sample); err != nil {
			return err
		}
	}
	return nil
}

// processSample 对一个有效采样执行 DSP 链并写出
func (p *Pipeline) processSample(s Sample) error {
	// 1) IR 低通滤波，得到更平滑的 PPG 波形
	irFiltered := p.filter.Update(s.IR)

	// 2) 峰值检测 (带不应期的向上穿越)
	if _, fired := p.detector.Update(s.Index, irFiltered); fired {
		// 3) 心率估计：需要至少两个被接受的峰值才有间隔
		if delta, ok := p.detector.LastInterval(); ok {
			if bpm, accepted := p.estimator.OnPeakInterval(delta); accepted {
				if p.OnHeartRate != nil {
					p.OnHeartRate(bpm)
				}
			}
		}
	}

	if p.monitor != nil {
		p.monitor.PushSample(irFiltered)
	}

	smoothedBPM, _ := p.estimator.SmoothedBPM()
	p.debugger.Record(s.Red, s.IR, irFiltered, smoothedBPM)

	// 4) 下游写出滤波后的 IR 波形值 (不是原始值也不是心率)
	// 写失败视为致命：不能在无法落盘的情况下继续推进 DSP 状态
	return p.sink.Write(irFiltered)
}

// SampleCount 返回已处理的有效采样数
func (p *Pipeline) SampleCount() int {
	return p.sampleIndex
}

// MalformedCount 返回被跳过的坏记录数
func (p *Pipeline) MalformedCount() int {
	return p.malformedCount
}

// OverflowCount 返回重组缓冲区的累计溢出次数
func (p *Pipeline) OverflowCount() int {
	return p.reassembler.OverflowCount()
}

// SmoothedBPM 返回当前平滑心率；尚无有效估计时 ok 为 false
func (p *Pipeline) SmoothedBPM() (bpm float64, ok bool) {
	return p.estimator.SmoothedBPM()
}
