package ppg

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// ByteSource 抽象一个按需轮询的字节来源
// Poll 在有限时间内返回 0..len(buf) 个字节；返回错误视为传输失败，流水线终止
type ByteSource interface {
	Poll(buf []byte) (n int, err error)
	Close() error
}

// SerialPort 定义串口操作接口，方便测试 Mock
type SerialPort interface {
	io.ReadWriteCloser
}

// SerialSource 从传感器串口读取原始字节流
type SerialSource struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	conn        SerialPort
}

// NewSerialSource 创建串口字节源 (尚未打开)
func NewSerialSource(port string, baudRate int, readTimeout time.Duration) *SerialSource {
	return &SerialSource{
		Port:        port,
		BaudRate:    baudRate,
		ReadTimeout: readTimeout,
	}
}

// Open 打开串口连接
// ReadTimeout 保证 Poll 有界返回，不会无限等待数据
func (s *SerialSource) Open() error {
	config := &serial.Config{
		Name:        s.Port,
		Baud:        s.BaudRate,
		ReadTimeout: s.ReadTimeout,
	}
	conn, err := serial.OpenPort(config)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Poll 读取当前可用的字节，超时返回 (0, nil)
func (s *SerialSource) Poll(buf []byte) (int, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("serial port not open")
	}
	n, err := s.conn.Read(buf)
	if err != nil {
		// 读超时在部分平台上以 io.EOF 上报，视为"暂无数据"
		if err == io.EOF {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

// Close 关闭串口连接
func (s *SerialSource) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
