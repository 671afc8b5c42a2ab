package spectrogram

import (
	"math"
	"testing"
)

func TestFindBin(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		truncate  bool
		roundup   bool
		wantIndex int
		wantPos   Position
		sentinel  int
	}{
		{"inside", 0.5, false, true, 0, Within, 0},
		{"edge rounds up", 1, false, true, 1, Within, 1},
		{"edge rounds down", 1, false, false, 0, Within, 0},
		{"just below", -0.5, false, true, -1, Below, -1},
		{"far below", -3.5, false, true, -4, Below, -1},
		{"upper edge rounds up", 10, false, true, 10, Above, 10},
		{"upper edge rounds down", 10, false, false, 9, Within, 9},
		{"far above", 25, false, true, 25, Above, 10},
		{"truncated above", 12.5, true, true, 9, Above, 10},
		{"truncated below", -3, true, true, 0, Below, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindBin(tt.x, 10, 0, 10, tt.truncate, tt.roundup)
			if got.Index != tt.wantIndex || got.Position != tt.wantPos {
				t.Fatalf("FindBin(%v) = %+v, want index %d position %d", tt.x, got, tt.wantIndex, tt.wantPos)
			}
			if got.Sentinel() != tt.sentinel {
				t.Fatalf("Sentinel() = %d, want %d", got.Sentinel(), tt.sentinel)
			}
		})
	}
}

func TestFindBinFractionalResolution(t *testing.T) {
	// 0.3/0.01 is not exactly 30 in floating point
	if got := FindBin(0.3, 100, 0, 1, false, true); got.Index != 30 {
		t.Fatalf("index = %d, want 30", got.Index)
	}
	if got := FindBin(0.3, 100, 0, 1, false, false); got.Index != 29 {
		t.Fatalf("index = %d, want 29", got.Index)
	}
}

func TestFindBinInfinities(t *testing.T) {
	up := FindBin(math.Inf(1), 10, 0, 10, false, false)
	if up.Position != Above || up.Index != 10 {
		t.Fatalf("+Inf = %+v", up)
	}
	down := FindBin(math.Inf(-1), 10, 0, 10, true, true)
	if down.Position != Below || down.Index != 0 {
		t.Fatalf("-Inf = %+v", down)
	}
}

func TestLogScale(t *testing.T) {
	scale := LogScale{BinsPerOctave: 12}

	tests := []struct {
		f    float64
		want int
		pos  Position
	}{
		{100, 0, Within},
		{150, 7, Within},
		{200, 12, Within},
		{50, -12, Below},
		{1000, 39, Above},
	}
	for _, tt := range tests {
		got := scale.FindBin(tt.f, 36, 100, 0, false, true)
		if got.Index != tt.want || got.Position != tt.pos {
			t.Fatalf("FindBin(%v) = %+v, want %d", tt.f, got, tt.want)
		}
	}

	if got := scale.BinLow(12, 100, 0); got < 199.999999 || got > 200.000001 {
		t.Fatalf("BinLow(12) = %v, want 200", got)
	}
}

func TestSpectrogramBinHelpers(t *testing.T) {
	s := rampSpec(t, 100, 50, 0.01, 100, "")

	if got := s.FindTimeBin(0.25, false, true).Index; got != 25 {
		t.Fatalf("time bin = %d, want 25", got)
	}
	if got := s.FindFreqBin(1050, false, true).Index; got != 10 {
		t.Fatalf("freq bin = %d, want 10", got)
	}
	if got := s.FindFreqBin(6000, false, true); got.Sentinel() != 50 {
		t.Fatalf("freq above range = %+v", got)
	}
	if got := s.TimeBinLow(30); got < 0.2999999 || got > 0.3000001 {
		t.Fatalf("TimeBinLow(30) = %v", got)
	}
	if got := s.FreqBinLow(10); got != 1000 {
		t.Fatalf("FreqBinLow(10) = %v", got)
	}
}
