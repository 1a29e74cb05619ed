package ppg

import (
	"bufio"
	"fmt"
	"os"
)

// WaveformSink 接收每个有效采样对应的一个处理后标量
// Write 失败意味着数据无法落盘，调用方必须视为致命错误停止流水线
type WaveformSink interface {
	Write(value float64) error
	Close() error
}

// CsvFileSink 把波形值按 "%f\n" 逐行写入 CSV 文件
// 每写一行立即 Flush，崩溃时最多丢失正在写的一行
type CsvFileSink struct {
	file   *os.File
	writer *bufio.Writer
}

// NewCsvFileSink 创建 (覆盖) 输出文件
func NewCsvFileSink(filename string) (*CsvFileSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &CsvFileSink{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Write 写入一个波形值
func (s *CsvFileSink) Write(value float64) error {
	if _, err := fmt.Fprintf(s.writer, "%f\n", value); err != nil {
		return err
	}
	return s.writer.Flush()
}

// Close 刷新缓冲区并关闭文件
func (s *CsvFileSink) Close() error {
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// SignalDebugger 定义调试记录接口
// 流水线只依赖这个接口，不依赖具体的文件操作
type SignalDebugger interface {
	Record(red, irRaw, irFiltered, smoothedBPM float64)
	Close()
}

// CsvFileDebugger 是 SignalDebugger 的具体实现
// 它封装了文件句柄，不向外暴露
type CsvFileDebugger struct {
	file   *os.File
	writer *bufio.Writer
}

// NewCsvFileDebugger 创建一个新的 CSV 调试器
func NewCsvFileDebugger(filename string) (*CsvFileDebugger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	// 写入表头
	if _, err := w.WriteString("Red,IrRaw,IrFiltered,SmoothedBPM\n"); err != nil {
		f.Close()
		return nil, err
	}

	return &CsvFileDebugger{
		file:   f,
		writer: w,
	}, nil
}

// Record 记录单个采样的各级中间值
func (d *CsvFileDebugger) Record(red, irRaw, irFiltered, smoothedBPM float64) {
	fmt.Fprintf(d.writer, "%f,%f,%f,%f\n", red, irRaw, irFiltered, smoothedBPM)
}

// Close 关闭文件并刷新缓冲区
func (d *CsvFileDebugger) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.file != nil {
		d.file.Close()
	}
}

// NoOpDebugger 是一个空实现，用于生产环境（不记录数据时使用）
// 这样可以避免在核心代码中写大量的 if debugger != nil check
type NoOpDebugger struct{}

func (d *NoOpDebugger) Record(red, irRaw, irFiltered, smoothedBPM float64) {}
func (d *NoOpDebugger) Close()                                            {}
