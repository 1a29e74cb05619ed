package ppg

import (
	"bytes"
	"os"
	"time"
)

// FileReplaySource 从抓包文件回放原始字节流，实现 ByteSource
// 文件内容就是当初从串口收到的字节原样 (由 StreamRecorder 录制)
// 读到文件末尾时 Poll 返回 io.EOF，调用方据此正常收尾
//
// 配速后按名义记录速率回放：墙钟时间没攒够额度时 Poll 返回 (0, nil)，
// 轮询节奏与实时采集一致，后台频谱监视在回放模式下也能拿到有意义的时间轴
type FileReplaySource struct {
	file *os.File

	// 配速状态 (linesPerSec <= 0 时全速回放)
	linesPerSec float64
	start       time.Time
	linesSent   int
}

// NewFileReplaySource 打开回放文件 (默认全速，不配速)
func NewFileReplaySource(filename string) (*FileReplaySource, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return &FileReplaySource{file: f}, nil
}

// SetPacing 按每秒记录数配速回放，通常传入名义采样率 (100 对/秒)
func (r *FileReplaySource) SetPacing(linesPerSec float64) {
	r.linesPerSec = linesPerSec
}

// Poll 读取最多 len(buf) 个字节，配速时可能返回 (0, nil) 表示"还没到点"
func (r *FileReplaySource) Poll(buf []byte) (int, error) {
	if r.linesPerSec > 0 {
		if r.start.IsZero() {
			r.start = time.Now()
		}
		// 已交出的行数不能超过墙钟时间对应的额度
		// 单块读取最多超前一个 chunk，下一次轮询会等墙钟追上来
		allowed := int(time.Since(r.start).Seconds()*r.linesPerSec) - r.linesSent
		if allowed <= 0 {
			return 0, nil
		}
	}

	n, err := r.file.Read(buf)
	if n > 0 {
		if r.linesPerSec > 0 {
			r.linesSent += bytes.Count(buf[:n], []byte{'\n'})
		}
		// 先把已读到的数据交上去，EOF 留到下一次轮询再上报
		return n, nil
	}
	return 0, err
}

// Close 关闭回放文件
func (r *FileReplaySource) Close() error {
	return r.file.Close()
}

// StreamRecorder 把轮询到的原始字节原样写入抓包文件，供以后回放
type StreamRecorder struct {
	file *os.File
}

// NewStreamRecorder 创建 (覆盖) 抓包文件
func NewStreamRecorder(filename string) (*StreamRecorder, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &StreamRecorder{file: f}, nil
}

// Write 追加一块原始字节
func (w *StreamRecorder) Write(chunk []byte) error {
	_, err := w.file.Write(chunk)
	return err
}

// Close 关闭抓包文件
func (w *StreamRecorder) Close() error {
	return w.file.Close()
}
