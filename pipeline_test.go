package ppg

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// memorySink 收集写入的波形值，可注入写失败
type memorySink struct {
	values    []float64
	failAfter int // 第 N 次写入后开始失败；0 表示永不失败
	closed    bool
}

func (s *memorySink) Write(value float64) error {
	if s.failAfter > 0 && len(s.values) >= s.failAfter {
		return fmt.Errorf("disk full")
	}
	s.values = append(s.values, value)
	return nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

// 场景 A：三条良构记录 -> 三个采样、三次写出
// 滤波序列 (alpha=0.2): 10.0, 24.0, 31.2
func TestPipeline_ScenarioWellFormed(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(DefaultConfig(), sink, nil)

	if err := p.ProcessChunk([]byte("100,50\n200,80\n150,60\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.SampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", p.SampleCount())
	}
	expected := []float64{10.0, 24.0, 31.2}
	if len(sink.values) != len(expected) {
		t.Fatalf("expected %d sink writes, got %d", len(expected), len(sink.values))
	}
	for i, v := range expected {
		if math.Abs(sink.values[i]-v) > 1e-9 {
			t.Errorf("write %d: expected %v, got %v", i, v, sink.values[i])
		}
	}
}

// 场景 B：坏记录整体跳过，不占序号、不动下游状态、不写出
func TestPipeline_ScenarioMalformed(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(DefaultConfig(), sink, nil)

	if err := p.ProcessChunk([]byte("abc,def\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SampleCount() != 0 || len(sink.values) != 0 {
		t.Fatalf("malformed record must not produce samples or writes")
	}
	if p.MalformedCount() != 1 {
		t.Errorf("expected 1 malformed record, got %d", p.MalformedCount())
	}

	// 后续良构记录从序号 0 开始，滤波状态仍是初始值
	if err := p.ProcessChunk([]byte("100,50\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SampleCount() != 1 {
		t.Errorf("expected 1 sample, got %d", p.SampleCount())
	}
	if len(sink.values) != 1 || math.Abs(sink.values[0]-10.0) > 1e-9 {
		t.Errorf("filter state was disturbed by malformed record: %v", sink.values)
	}
}

// 场景 C：超长记录溢出丢弃后，后续良构记录照常处理
func TestPipeline_ScenarioOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reassembler.BufferSize = 8

	sink := &memorySink{}
	p := NewPipeline(cfg, sink, nil)

	long := strings.Repeat("9", 20) // 无终止符的超长片段
	if err := p.ProcessChunk([]byte(long)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.OverflowCount() == 0 {
		t.Error("expected at least one overflow")
	}
	if p.SampleCount() != 0 {
		t.Errorf("discarded fragment must not become a sample")
	}

	if err := p.ProcessChunk([]byte("\n100,50\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SampleCount() != 1 || len(sink.values) != 1 {
		t.Errorf("well-formed record after overflow was lost: samples=%d writes=%d",
			p.SampleCount(), len(sink.values))
	}
}

// sink 写失败必须作为致命错误向上传播
func TestPipeline_SinkFailureIsFatal(t *testing.T) {
	sink := &memorySink{failAfter: 1}
	p := NewPipeline(DefaultConfig(), sink, nil)

	err := p.ProcessChunk([]byte("100,50\n200,80\n"))
	if err == nil {
		t.Fatal("expected error when sink write fails")
	}
}

// 端到端心率：两个间隔 50 采样的峰值 -> 120 BPM -> 平滑值 36
func TestPipeline_HeartRateEndToEnd(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(DefaultConfig(), sink, nil)

	var reported []float64
	p.OnHeartRate = func(bpm float64) {
		reported = append(reported, bpm)
	}

	// 序号 0 和 50 处的 IR 脉冲；中间的 0 让滤波值衰减回阈值以下
	var b strings.Builder
	for i := 0; i < 60; i++ {
		if i == 0 || i == 50 {
			b.WriteString("0,100\n")
		} else {
			b.WriteString("0,0\n")
		}
	}

	if err := p.ProcessChunk([]byte(b.String())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reported) != 1 {
		t.Fatalf("expected exactly 1 heart-rate update, got %v", reported)
	}
	if math.Abs(reported[0]-36.0) > 1e-6 {
		t.Errorf("expected smoothed 36.0 BPM, got %v", reported[0])
	}

	bpm, ok := p.SmoothedBPM()
	if !ok || math.Abs(bpm-36.0) > 1e-6 {
		t.Errorf("SmoothedBPM: expected 36.0, got %v (ok=%v)", bpm, ok)
	}

	// 每个有效采样都有一次写出，与心率无关
	if len(sink.values) != 60 {
		t.Errorf("expected 60 sink writes, got %d", len(sink.values))
	}
}

// 字节流的切分方式不影响处理结果
func TestPipeline_ChunkBoundaryInvariance(t *testing.T) {
	data := []byte("100,50\n200,80\n150,60\n")

	wholeSink := &memorySink{}
	whole := NewPipeline(DefaultConfig(), wholeSink, nil)
	if err := whole.ProcessChunk(data); err != nil {
		t.Fatal(err)
	}

	splitSink := &memorySink{}
	split := NewPipeline(DefaultConfig(), splitSink, nil)
	for _, b := range data {
		if err := split.ProcessChunk([]byte{b}); err != nil {
			t.Fatal(err)
		}
	}

	if len(wholeSink.values) != len(splitSink.values) {
		t.Fatalf("write counts differ: %d vs %d", len(wholeSink.values), len(splitSink.values))
	}
	for i := range wholeSink.values {
		if wholeSink.values[i] != splitSink.values[i] {
			t.Errorf("write %d differs: %v vs %v", i, wholeSink.values[i], splitSink.values[i])
		}
	}
}
