package ppg

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// PulseAnalyzer 对滤波后的 PPG 波形做频谱分析，提取脉搏主频
type PulseAnalyzer struct {
	SampleRate float64
	FFTSize    int
	Window     []float64
}

// NewPulseAnalyzer 创建新的频谱分析器
func NewPulseAnalyzer(sampleRate float64, fftSize int) *PulseAnalyzer {
	// 创建汉宁窗 (Hanning Window)
	// 公式: 0.5 * (1 - cos(2*PI*n / (N-1)))
	window := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &PulseAnalyzer{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		Window:     window,
	}
}

// DominantFrequency 计算当前波形片段在 [minFreq, maxFreq] 内的主频
// 返回主频 (Hz)、峰值功率和噪声基底功率
// PPG 波形带有很强的直流分量，计算前先去均值，否则 0Hz 会淹没脉搏峰
func (pa *PulseAnalyzer) DominantFrequency(samples []float64, minFreq, maxFreq float64) (freq, peak, noiseFloor float64) {
	if len(samples) < pa.FFTSize {
		return 0, 0, 0
	}

	// 1. 去直流
	mean := 0.0
	for _, s := range samples[:pa.FFTSize] {
		mean += s
	}
	mean /= float64(pa.FFTSize)

	// 2. 加窗
	input := make([]complex128, pa.FFTSize)
	for i := 0; i < pa.FFTSize; i++ {
		input[i] = complex((samples[i]-mean)*pa.Window[i], 0)
	}

	// 3. 执行 FFT，取功率谱
	spectrum := fft.FFT(input)
	power := make([]float64, pa.FFTSize/2+1)
	for i := range power {
		mag := cmplx.Abs(spectrum[i])
		power[i] = mag * mag
	}

	// 4. 估算噪声基底
	// 使用中位数 (Median) 来抵抗信号峰值的干扰
	sorted := make([]float64, len(power))
	copy(sorted, power)
	sort.Float64s(sorted)
	noiseFloor = sorted[len(sorted)/2]
	// 防止在完全平直的输入上 noiseFloor 为 0，导致除零
	if noiseFloor < 1e-12 {
		noiseFloor = 1e-12
	}

	// 5. 在限定频带内寻找峰值
	binWidth := pa.SampleRate / float64(pa.FFTSize)
	startIndex := int(minFreq / binWidth)
	endIndex := int(maxFreq / binWidth)
	if startIndex < 1 {
		startIndex = 1 // 跳过直流 bin
	}
	if endIndex > len(power)-1 {
		endIndex = len(power) - 1
	}

	maxMag := 0.0
	maxIndex := 0
	for i := startIndex; i <= endIndex; i++ {
		if power[i] > maxMag {
			maxMag = power[i]
			maxIndex = i
		}
	}

	// 6. 抛物线插值 (Parabolic Interpolation)
	// 利用峰值及其左右相邻点来估算真实的峰值位置
	// p = 0.5 * (alpha - gamma) / (alpha - 2*beta + gamma)
	if maxIndex > 0 && maxIndex < len(power)-1 {
		alpha := power[maxIndex-1]
		beta := power[maxIndex]
		gamma := power[maxIndex+1]
		denom := alpha - 2*beta + gamma
		if denom != 0 {
			p := 0.5 * (alpha - gamma) / denom
			freq = (float64(maxIndex) + p) * binWidth
		} else {
			freq = float64(maxIndex) * binWidth
		}
	} else {
		freq = float64(maxIndex) * binWidth
	}

	return freq, maxMag, noiseFloor
}
