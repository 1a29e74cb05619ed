package ppg

import (
	"bytes"
	"fmt"
	"strconv"
)

// Sample 表示一对成功解析的 Red/IR 采样
// Index 是从 0 开始、只统计有效记录的单调递增序号
type Sample struct {
	Red   float64
	IR    float64
	Index int
}

// ErrMalformedRecord 表示记录无法解析出两个整数
var ErrMalformedRecord = fmt.Errorf("malformed record")

// ParseRecord 解析一条重组完成的记录
// 期望形状: "<red_int>,<ir_int>"，整数可带符号，
// 行尾允许残留 '\r' 或空白 (在这里剥离，重组层不处理)
func ParseRecord(record []byte) (red, ir float64, err error) {
	line := bytes.TrimRight(record, "\r\n\t ")

	comma := bytes.IndexByte(line, ',')
	if comma < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedRecord, record)
	}

	redInt, err := strconv.Atoi(string(bytes.TrimSpace(line[:comma])))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedRecord, record)
	}
	irInt, err := strconv.Atoi(string(bytes.TrimSpace(line[comma+1:])))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedRecord, record)
	}

	return float64(redInt), float64(irInt), nil
}
