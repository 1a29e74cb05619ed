package ppg

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// PPGSystem 管理整个采集与处理系统的生命周期
type PPGSystem struct {
	// 配置
	cfg *Config

	// 输出与可选功能
	OutputFile string // CSV 波形输出路径
	ReplayFile string // 设置后进入回放模式，从抓包文件读字节
	RecordFile string // 设置后把收到的原始字节抓包到文件
	DebugFile  string // 设置后记录各级中间值到调试 CSV

	// 组件
	source   ByteSource
	sink     WaveformSink
	recorder *StreamRecorder
	debugger SignalDebugger
	pipeline *Pipeline
	monitor  *PulseMonitor

	// 回调
	OnHeartRate func(bpm float64) // 平滑心率更新时回调；nil 时打印到控制台

	// 状态
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan error
}

// NewPPGSystem 创建系统实例
func NewPPGSystem(cfg *Config) *PPGSystem {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &PPGSystem{
		cfg:        cfg,
		OutputFile: "data.csv",
		stopChan:   make(chan struct{}),
		doneChan:   make(chan error, 1),
	}
}

// Start 初始化所有组件并启动轮询循环
func (s *PPGSystem) Start() error {
	// 1. 字节源：回放模式 或 实时串口
	if s.ReplayFile != "" {
		src, err := NewFileReplaySource(s.ReplayFile)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %v", err)
		}
		// 回放按名义采样率配速，轮询节奏与实时采集一致
		src.SetPacing(s.cfg.DSP.SampleRate)
		s.source = src
		fmt.Printf("Mode: REPLAY (%s)\n", s.ReplayFile)
	} else {
		src := NewSerialSource(s.cfg.Serial.Port, s.cfg.Serial.BaudRate, s.cfg.Serial.ReadTimeout)
		fmt.Printf("Opening serial port %s...\n", s.cfg.Serial.Port)
		if err := src.Open(); err != nil {
			return fmt.Errorf("failed to open serial port: %v", err)
		}
		s.source = src
		fmt.Println("Serial port opened.")
	}

	// 2. 波形输出
	sink, err := NewCsvFileSink(s.OutputFile)
	if err != nil {
		s.source.Close()
		return fmt.Errorf("failed to create output file: %v", err)
	}
	s.sink = sink

	// 3. 可选：抓包录制 (仅实时模式有意义)
	if s.RecordFile != "" && s.ReplayFile == "" {
		s.recorder, err = NewStreamRecorder(s.RecordFile)
		if err != nil {
			s.sink.Close()
			s.source.Close()
			return fmt.Errorf("failed to create capture file: %v", err)
		}
		fmt.Printf("Recording raw stream to %s\n", s.RecordFile)
	}

	// 4. 可选：调试记录
	if s.DebugFile != "" {
		dbg, err := NewCsvFileDebugger(s.DebugFile)
		if err != nil {
			log.Printf("Warning: could not create debug file: %v", err)
		} else {
			s.debugger = dbg
		}
	}

	// 5. 流水线与频谱监视
	s.pipeline = NewPipeline(s.cfg, s.sink, s.debugger)
	s.pipeline.OnHeartRate = func(bpm float64) {
		if s.OnHeartRate != nil {
			s.OnHeartRate(bpm)
		} else {
			fmt.Printf("HR ≈ %.1f bpm\n", bpm)
		}
	}

	s.monitor = NewPulseMonitor(s.cfg, func(bpm float64) {
		fmt.Printf("[MONITOR] Spectral HR: %.1f bpm\n", bpm)
	})
	s.pipeline.SetMonitor(s.monitor)
	s.monitor.Start()

	// 6. 启动轮询循环
	go func() {
		err := s.runLoop()
		s.shutdown()
		s.doneChan <- err
	}()

	return nil
}

// runLoop 是单线程的轮询-处理主循环，拥有全部流水线状态
func (s *PPGSystem) runLoop() error {
	chunk := make([]byte, s.cfg.Driver.ChunkSize)

	for {
		select {
		case <-s.stopChan:
			return nil
		default:
		}

		n, err := s.source.Poll(chunk)
		if n > 0 {
			if s.recorder != nil {
				if werr := s.recorder.Write(chunk[:n]); werr != nil {
					log.Printf("Warning: capture write failed: %v", werr)
				}
			}
			if perr := s.pipeline.ProcessChunk(chunk[:n]); perr != nil {
				return fmt.Errorf("sink write failed: %v", perr)
			}
		}
		if err != nil {
			if err == io.EOF {
				// 回放文件读完，正常收尾
				fmt.Println("End of stream.")
				return nil
			}
			return fmt.Errorf("error reading from byte source: %v", err)
		}

		// 等待片刻让串口积累数据 (0 字节的轮询是正常情况)
		time.Sleep(s.cfg.Driver.PollInterval)
	}
}

// shutdown 按固定顺序释放所有资源
func (s *PPGSystem) shutdown() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			log.Printf("Warning: source close failed: %v", err)
		}
	}
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			log.Printf("Warning: capture close failed: %v", err)
		}
	}
	if s.debugger != nil {
		s.debugger.Close()
	}
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			log.Printf("Warning: sink close failed: %v", err)
		}
	}

	if s.pipeline != nil {
		fmt.Printf("Processed %d samples (%d malformed, %d overflows)\n",
			s.pipeline.SampleCount(), s.pipeline.MalformedCount(), s.pipeline.OverflowCount())
	}
}

// Stop 请求停止轮询循环 (可安全多次调用)
func (s *PPGSystem) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Wait 阻塞直到系统结束，返回导致退出的错误 (正常停止为 nil)
func (s *PPGSystem) Wait() error {
	return <-s.doneChan
}
