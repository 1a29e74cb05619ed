package ppg

import (
	"errors"
	"math"
	"testing"
)

func TestParseRecord_WellFormed(t *testing.T) {
	cases := []struct {
		in   string
		red  float64
		ir   float64
	}{
		{"1234,5678", 1234, 5678},
		{"0,0", 0, 0},
		{"-5,17", -5, 17},
		{"+12,-34", 12, -34},
		{"1234,5678\r", 1234, 5678}, // 行尾残留 '\r'
		{"1234,5678  ", 1234, 5678}, // 行尾空白
	}

	for _, c := range cases {
		red, ir, err := ParseRecord([]byte(c.in))
		if err != nil {
			t.Errorf("ParseRecord(%q) unexpected error: %v", c.in, err)
			continue
		}
		if math.Abs(red-c.red) > 1e-12 || math.Abs(ir-c.ir) > 1e-12 {
			t.Errorf("ParseRecord(%q) = (%v, %v), expected (%v, %v)", c.in, red, ir, c.red, c.ir)
		}
	}
}

func TestParseRecord_Malformed(t *testing.T) {
	cases := []string{
		"",
		"abc,def",
		"1234",
		",",
		"12,",
		",34",
		"12,34,56",
		"12.5,34", // 只接受整数
		"12;34",
	}

	for _, c := range cases {
		_, _, err := ParseRecord([]byte(c))
		if err == nil {
			t.Errorf("ParseRecord(%q) expected error, got nil", c)
			continue
		}
		if !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("ParseRecord(%q) error should wrap ErrMalformedRecord, got %v", c, err)
		}
	}
}

// 解析是纯函数：同一条记录反复解析结果必须一致
func TestParseRecord_Deterministic(t *testing.T) {
	record := []byte("321,654\r")
	r1, i1, err1 := ParseRecord(record)
	r2, i2, err2 := ParseRecord(record)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if r1 != r2 || i1 != i2 {
		t.Errorf("parse not deterministic: (%v,%v) vs (%v,%v)", r1, i1, r2, i2)
	}
}
