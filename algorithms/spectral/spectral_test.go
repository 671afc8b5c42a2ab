package spectral

import (
	"math"
	"testing"

	"github.com/RyanBlaney/spectro/algorithms/windowing"
	"github.com/RyanBlaney/spectro/internal/testutil"
	"github.com/RyanBlaney/spectro/logging"
)

func TestMakeFrames(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name        string
		winlen      int
		winstep     int
		zeroPadding bool
		wantFrames  int
		wantLast    []float64
	}{
		{"overlapping", 4, 2, false, 4, []float64{7, 8, 9, 10}},
		{"zero padded", 4, 2, true, 5, []float64{9, 10, 0, 0}},
		{"drops remainder", 3, 3, false, 3, []float64{7, 8, 9}},
		{"window longer than signal", 20, 5, false, 1, x},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := MakeFrames(x, tt.winlen, tt.winstep, tt.zeroPadding)
			if len(frames) != tt.wantFrames {
				t.Fatalf("got %d frames, want %d", len(frames), tt.wantFrames)
			}
			testutil.RequireSliceNearlyEqual(t, frames[len(frames)-1], tt.wantLast, 0)
		})
	}

	if MakeFrames(nil, 4, 2, false) != nil {
		t.Fatalf("empty signal should give no frames")
	}
}

func TestSTFTMagnitude(t *testing.T) {
	const n = 8
	dc := make([]float64, n)
	tone := make([]float64, n)
	for i := range n {
		dc[i] = 1
		tone[i] = math.Cos(2 * math.Pi * 2 * float64(i) / n)
	}

	stft := NewSTFT(&logging.NoOpLogger{})
	res, err := stft.ComputeFrames([][]float64{dc, tone}, 0, nil)
	if err != nil {
		t.Fatalf("ComputeFrames: %v", err)
	}
	if res.TimeFrames != 2 || res.FreqBins != 5 || res.NFFT != 8 {
		t.Fatalf("shape = %d x %d (nfft %d), want 2 x 5 (nfft 8)", res.TimeFrames, res.FreqBins, res.NFFT)
	}
	testutil.RequireSliceNearlyEqual(t, res.Magnitude[0], []float64{8, 0, 0, 0, 0}, 1e-9)
	testutil.RequireSliceNearlyEqual(t, res.Magnitude[1], []float64{0, 0, 4, 0, 0}, 1e-9)
}

func TestSTFTZeroPadsToNFFT(t *testing.T) {
	stft := NewSTFT(nil)
	res, err := stft.ComputeFrames([][]float64{{1, 1, 1, 1}}, 16, nil)
	if err != nil {
		t.Fatalf("ComputeFrames: %v", err)
	}
	if res.FreqBins != 9 {
		t.Fatalf("freq bins = %d, want 9", res.FreqBins)
	}
	testutil.RequireNearlyEqual(t, res.Magnitude[0][0], 4, 1e-9)
}

func TestSTFTAppliesWindow(t *testing.T) {
	w, err := windowing.New("hann", 4)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	res, err := NewSTFT(nil).ComputeFrames([][]float64{{1, 1, 1, 1}}, 0, w)
	if err != nil {
		t.Fatalf("ComputeFrames: %v", err)
	}
	// periodic hann of 4 sums to 2
	testutil.RequireNearlyEqual(t, res.Magnitude[0][0], 2, 1e-9)
}

func TestSTFTRejectsRaggedFrames(t *testing.T) {
	_, err := NewSTFT(nil).ComputeFrames([][]float64{{1, 2, 3, 4}, {1, 2}}, 0, nil)
	if err == nil {
		t.Fatalf("expected error for frames of unequal length")
	}
	if _, err := NewSTFT(nil).ComputeFrames(nil, 0, nil); err == nil {
		t.Fatalf("expected error for no frames")
	}
}

func TestPowerSpectrum(t *testing.T) {
	got := NewPowerSpectrum().ComputeFrames([][]float64{{4, 2}, {0, 8}}, 8)
	testutil.RequireMatrixNearlyEqual(t, got, [][]float64{{2, 0.5}, {0, 8}}, 1e-12)
}

func TestMelFilterBank(t *testing.T) {
	ms := NewMelScale()
	testutil.RequireNearlyEqual(t, ms.MelToHz(ms.HzToMel(1234)), 1234, 1e-9)

	fb := ms.CreateMelFilterBank(10, 256, 8000, 0, 4000)
	if len(fb) != 10 || len(fb[0]) != 129 {
		t.Fatalf("filter bank shape = %d x %d, want 10 x 129", len(fb), len(fb[0]))
	}
	for m, filter := range fb {
		peak := 0.0
		for _, w := range filter {
			if w < 0 || w > 1 {
				t.Fatalf("filter %d has weight %v outside [0, 1]", m, w)
			}
			peak = math.Max(peak, w)
		}
		if peak != 1 {
			t.Fatalf("filter %d peak = %v, want 1", m, peak)
		}
	}
}

func TestMFCCOfSilenceIsFlat(t *testing.T) {
	power := testutil.Matrix(3, 129, 0)
	mfcc := NewMFCC(8000, DefaultMFCCParams())

	res, err := mfcc.ComputeFrames(power, 256)
	if err != nil {
		t.Fatalf("ComputeFrames: %v", err)
	}
	if len(res.Coefficients) != 3 || len(res.Coefficients[0]) != 20 {
		t.Fatalf("coefficients shape = %d x %d, want 3 x 20", len(res.Coefficients), len(res.Coefficients[0]))
	}
	if len(res.FilterBanks[0]) != 40 {
		t.Fatalf("filter banks = %d, want 40", len(res.FilterBanks[0]))
	}
	testutil.RequireNearlyEqual(t, res.FilterBanks[0][0], 20*math.Log10(smallestPositive), 1e-9)
	for _, c := range res.Coefficients[1] {
		testutil.RequireNearlyEqual(t, c, 0, 1e-9)
	}
}

func TestMFCCLifter(t *testing.T) {
	lift := NewMFCC(8000, DefaultMFCCParams()).lifter()
	testutil.RequireNearlyEqual(t, lift[0], 1, 1e-12)
	testutil.RequireNearlyEqual(t, lift[10], 11, 1e-12)
}

func TestMFCCRejectsTooManyCoefficients(t *testing.T) {
	mfcc := NewMFCC(8000, MFCCParams{NumCoefficients: 40, NumMelFilters: 40})
	if err := mfcc.Initialize(256); err == nil {
		t.Fatalf("expected error when coefficients >= filters")
	}
}

func TestCQTPeaksAtToneBin(t *testing.T) {
	cqt, err := NewCQT(CQTParams{SampleRate: 8000, FMin: 100, NumBins: 36, BinsPerOctave: 12, Hop: 512})
	if err != nil {
		t.Fatalf("NewCQT: %v", err)
	}

	signal := testutil.Sine(8000, 8000, 200, 1)
	out := cqt.Compute(signal)
	if len(out) != cqt.NumFrames(len(signal)) || len(out) != 16 {
		t.Fatalf("frames = %d, want 16", len(out))
	}

	frame := out[8]
	best := 0
	for k, v := range frame {
		if v > frame[best] {
			best = k
		}
	}
	if best != 12 {
		t.Fatalf("peak at bin %d, want 12", best)
	}
}

func TestCQTValidation(t *testing.T) {
	tests := []struct {
		name   string
		params CQTParams
	}{
		{"no rate", CQTParams{FMin: 100, NumBins: 12, BinsPerOctave: 12, Hop: 64}},
		{"no fmin", CQTParams{SampleRate: 8000, NumBins: 12, BinsPerOctave: 12, Hop: 64}},
		{"above nyquist", CQTParams{SampleRate: 8000, FMin: 1000, NumBins: 48, BinsPerOctave: 12, Hop: 64}},
		{"no hop", CQTParams{SampleRate: 8000, FMin: 100, NumBins: 12, BinsPerOctave: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCQT(tt.params); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
