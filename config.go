package ppg

import "time"

// Config 结构体用于集中管理采集与处理链路的所有可调参数
// 各默认值与传感器固件 (约 10ms 触发一次测量 -> 100 对/秒) 保持兼容
type Config struct {
	// --- 串口采集 (Serial) ---
	// 传感器通过串口按行上报 "red,ir" 文本记录
	Serial struct {
		Port        string        // 串口设备名 (例如 /dev/tty.SLAB_USBtoUART 或 COM5)
		BaudRate    int           // 波特率，固件默认 115200 (8N1)
		ReadTimeout time.Duration // 单次读取的超时上限，保证轮询不会无限阻塞
	}

	// --- 行重组 (Reassembler) ---
	Reassembler struct {
		BufferSize int // 单条记录的最大字节数。到达上限仍未见到 '\n' 时丢弃整段并重新同步
	}

	// --- 驱动循环 (Driver) ---
	Driver struct {
		ChunkSize    int           // 每次轮询最多读取的字节数
		PollInterval time.Duration // 两次轮询之间的等待时间，给串口留出积累数据的时间
	}

	// --- DSP 处理 ---
	DSP struct {
		SampleRate float64 // 有效采样率 (对/秒)。固件约每 10ms 上报一对 -> 100Hz

		// IR 通道低通滤波 (单极点指数平滑)
		// y = y + alpha*(x - y)；alpha 越大平滑越弱、响应越快、噪声越多
		FilterAlpha float64 // 0 < alpha < 1，默认 0.2

		// 峰值检测：滤波后 IR 向上穿越阈值视为一次心跳候选
		PeakThreshold     float64 // 阈值，与滤波后 IR 同单位，默认 10.0
		RefractorySeconds float64 // 不应期时长 (秒)。默认 0.3s，抑制同一心跳的二次触发

		// 心率估计
		MinBPM  float64 // 合理心率下界 (开区间，恰好等于边界的值被拒绝)，默认 40
		MaxBPM  float64 // 合理心率上界 (开区间)，默认 200
		HRAlpha float64 // 心率指数平滑系数，默认 0.3。仅在瞬时值通过合理性检查时更新
	}

	// --- 频谱监视 (Monitor) ---
	// 后台对滤波后波形做 FFT，给出脉搏主频的独立估计，用于交叉验证
	Monitor struct {
		Enabled        bool          // 是否启用后台频谱监视
		UpdateInterval time.Duration // 分析周期 (例如 2s)
		FFTSize        int           // FFT 点数。100Hz 下 1024 点约覆盖 10s 波形
		MinFrequency   float64       // 搜索下限 (Hz)。0.7Hz ~ 42 BPM
		MaxFrequency   float64       // 搜索上限 (Hz)。3.3Hz ~ 198 BPM
		RequiredSNR    float64       // 峰值功率需达到噪声基底的倍数，否则视为无有效脉搏
	}
}

// DefaultConfig 返回与原始采集程序兼容的默认配置
func DefaultConfig() *Config {
	cfg := &Config{}

	// --- 串口采集 ---
	cfg.Serial.Port = "/dev/tty.SLAB_USBtoUART"
	cfg.Serial.BaudRate = 115200
	cfg.Serial.ReadTimeout = 50 * time.Millisecond

	// --- 行重组 ---
	cfg.Reassembler.BufferSize = 1024

	// --- 驱动循环 ---
	cfg.Driver.ChunkSize = 256
	cfg.Driver.PollInterval = 10 * time.Millisecond

	// --- DSP 处理 ---
	cfg.DSP.SampleRate = 100.0
	cfg.DSP.FilterAlpha = 0.2
	cfg.DSP.PeakThreshold = 10.0
	cfg.DSP.RefractorySeconds = 0.3
	cfg.DSP.MinBPM = 40.0
	cfg.DSP.MaxBPM = 200.0
	cfg.DSP.HRAlpha = 0.3

	// --- 频谱监视 ---
	cfg.Monitor.Enabled = true
	cfg.Monitor.UpdateInterval = 2 * time.Second
	cfg.Monitor.FFTSize = 1024
	cfg.Monitor.MinFrequency = 0.7
	cfg.Monitor.MaxFrequency = 3.3
	cfg.Monitor.RequiredSNR = 10.0

	return cfg
}
