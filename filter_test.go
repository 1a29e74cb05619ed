package ppg

import (
	"math"
	"testing"
)

// 参考序列：alpha=0.2，输入 50, 80, 60
// y1 = 0 + 0.2*50        = 10.0
// y2 = 10 + 0.2*(80-10)  = 24.0
// y3 = 24 + 0.2*(60-24)  = 31.2
func TestLowPassFilter_ReferenceSequence(t *testing.T) {
	f := NewLowPassFilter(0.2)

	expected := []float64{10.0, 24.0, 31.2}
	inputs := []float64{50, 80, 60}

	for i, x := range inputs {
		y := f.Update(x)
		if math.Abs(y-expected[i]) > 1e-9 {
			t.Errorf("step %d: expected %v, got %v", i, expected[i], y)
		}
	}
}

// 恒定输入下滤波值单调逼近输入值，永不过冲
// 收敛到 float64 不动点后输出保持相等，因此只要求非递减
func TestLowPassFilter_MonotonicConvergence(t *testing.T) {
	f := NewLowPassFilter(0.2)
	const target = 100.0

	prev := 0.0
	for i := 0; i < 200; i++ {
		y := f.Update(target)
		if y < prev {
			t.Fatalf("step %d: not monotonically non-decreasing (%v -> %v)", i, prev, y)
		}
		if y > target {
			t.Fatalf("step %d: overshoot: %v > %v", i, y, target)
		}
		prev = y
	}

	// 200 步之后应当已经非常接近目标
	if math.Abs(f.Value()-target) > 1e-6 {
		t.Errorf("did not converge: %v", f.Value())
	}
}

func TestLowPassFilter_Reset(t *testing.T) {
	f := NewLowPassFilter(0.5)
	f.Update(42)
	f.Reset()
	if f.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", f.Value())
	}
}
