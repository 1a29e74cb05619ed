package ppg

import (
	"context"
	"time"
)

// PulseMonitor 在后台异步运行，周期性对滤波后的 PPG 波形做频谱分析，
// 给出脉搏主频的独立估计 (换算为 BPM)，用于交叉验证时域的峰值检测结果。
// 它只观察波形，从不反向影响流水线状态
type PulseMonitor struct {
	cfg *Config

	sampleRate     float64
	fftSize        int
	updateInterval time.Duration

	// 通信
	sampleInChan chan float64       // 从流水线接收滤波后的采样
	OnRateUpdate func(bpm float64)  // 回调函数，上报频谱估计的心率

	// 内部状态
	analyzer   *PulseAnalyzer
	ringBuffer []float64 // 环形缓冲区，保存最近 fftSize 个采样
	ringPos    int
	filled     int // 已写入的采样数，不足一窗时不做分析
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPulseMonitor 创建实例
func NewPulseMonitor(cfg *Config, onUpdate func(float64)) *PulseMonitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &PulseMonitor{
		cfg:            cfg,
		sampleRate:     cfg.DSP.SampleRate,
		fftSize:        cfg.Monitor.FFTSize,
		updateInterval: cfg.Monitor.UpdateInterval,
		sampleInChan:   make(chan float64, 1024),
		OnRateUpdate:   onUpdate,
		analyzer:       NewPulseAnalyzer(cfg.DSP.SampleRate, cfg.Monitor.FFTSize),
		ringBuffer:     make([]float64, cfg.Monitor.FFTSize),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start 启动后台监视 goroutine
func (pm *PulseMonitor) Start() {
	if pm.cfg.Monitor.Enabled {
		go pm.run()
	}
}

// Stop 停止监视
func (pm *PulseMonitor) Stop() {
	pm.cancel()
}

// PushSample 流水线调用此方法，将滤波后的采样推送到监视器
// 缓冲满时直接丢弃，绝不阻塞处理主循环
func (pm *PulseMonitor) PushSample(irFiltered float64) {
	if !pm.cfg.Monitor.Enabled {
		return
	}
	select {
	case pm.sampleInChan <- irFiltered:
	default:
		// 缓冲区已满，丢弃数据以避免阻塞主线程
	}
}

// run 是后台运行的主循环
func (pm *PulseMonitor) run() {
	ticker := time.NewTicker(pm.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pm.ctx.Done():
			return
		case s := <-pm.sampleInChan:
			pm.ringBuffer[pm.ringPos] = s
			pm.ringPos = (pm.ringPos + 1) % len(pm.ringBuffer)
			if pm.filled < len(pm.ringBuffer) {
				pm.filled++
			}
		case <-ticker.C:
			if pm.filled < pm.fftSize {
				continue // 数据还不够一整窗
			}

			// 按时间顺序摊平环形缓冲区再分析
			window := make([]float64, pm.fftSize)
			for i := 0; i < pm.fftSize; i++ {
				window[i] = pm.ringBuffer[(pm.ringPos+i)%pm.fftSize]
			}

			freq, peak, noiseFloor := pm.analyzer.DominantFrequency(
				window, pm.cfg.Monitor.MinFrequency, pm.cfg.Monitor.MaxFrequency)

			// 静噪：峰值不够突出说明当前没有稳定脉搏，不上报
			if peak < noiseFloor*pm.cfg.Monitor.RequiredSNR {
				continue
			}

			if pm.OnRateUpdate != nil {
				pm.OnRateUpdate(freq * 60.0)
			}
		}
	}
}
