package spectrogram

import (
	"testing"

	"github.com/RyanBlaney/spectro/annotation"
	"github.com/RyanBlaney/spectro/internal/testutil"
)

func TestSegmentByNumber(t *testing.T) {
	s := rampSpec(t, 100, 4, 0.01, 1, "")

	segs := s.Segment(SegmentOptions{Number: 3})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for k, seg := range segs {
		requireShape(t, seg, 33, 4)
		if seg.TMin != 0 {
			t.Fatalf("segment %d TMin = %v, want 0", k, seg.TMin)
		}
		for i := range seg.Image {
			testutil.RequireSliceNearlyEqual(t, seg.Image[i], s.Image[33*k+i], 0)
		}
	}
}

func TestSegmentByNumberPadded(t *testing.T) {
	s := rampSpec(t, 100, 4, 0.01, 1, "")

	segs := s.Segment(SegmentOptions{Number: 3, Pad: true})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	last := segs[2]
	requireShape(t, last, 34, 4)
	testutil.RequireSliceNearlyEqual(t, last.Image[31], s.Image[99], 0)
	testutil.RequireSliceNearlyEqual(t, last.Image[32], make([]float64, 4), 0)
	testutil.RequireSliceNearlyEqual(t, last.Image[33], make([]float64, 4), 0)
}

func TestSegmentKeepTime(t *testing.T) {
	s := rampSpec(t, 100, 4, 0.01, 1, "")
	segs := s.Segment(SegmentOptions{Number: 3, KeepTime: true})
	testutil.RequireNearlyEqual(t, segs[1].TMin, 0.33, 1e-12)
}

func TestSegmentByLength(t *testing.T) {
	s := rampSpec(t, 100, 4, 0.01, 1, "")

	tests := []struct {
		name     string
		opts     SegmentOptions
		number   int
		bins     int
		secondAt int
	}{
		{"exact", SegmentOptions{Length: 0.25}, 4, 25, 25},
		{"drops partial", SegmentOptions{Length: 0.3}, 3, 30, 30},
		{"pads partial", SegmentOptions{Length: 0.3, Pad: true}, 4, 30, 30},
		{"overlap", SegmentOptions{Length: 0.2, Overlap: 0.5}, 9, 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := s.Segment(tt.opts)
			if len(segs) != tt.number {
				t.Fatalf("got %d segments, want %d", len(segs), tt.number)
			}
			for _, seg := range segs {
				requireShape(t, seg, tt.bins, 4)
			}
			testutil.RequireSliceNearlyEqual(t, segs[1].Image[0], s.Image[tt.secondAt], 0)
			testutil.RequireNearlyEqual(t, segs[1].TimeVector[0], s.TimeVector[tt.secondAt], 0)
		})
	}
}

func TestSegmentWholeDuration(t *testing.T) {
	s, err := New(testutil.Ramp(10, 2), WithTime(5, 0.1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	segs := s.Segment(SegmentOptions{Length: s.Duration()})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	requireShape(t, segs[0], 10, 2)
	if segs[0].TMin != 0 {
		t.Fatalf("TMin = %v, want 0", segs[0].TMin)
	}
}

func TestClipReturnsRemainder(t *testing.T) {
	s := mustAnnotate(t, rampSpec(t, 100, 50, 0.01, 100, ""), 2, 0.4, 0.45)
	boxes := []annotation.Box{
		{TStart: 0.6, TEnd: 0.7, FStart: 0, FEnd: 5000},
		{TStart: 0.2, TEnd: 0.3, FStart: 0, FEnd: 5000},
	}

	clips, rest := s.Clip(boxes, ClipOptions{})
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	requireShape(t, clips[0], 10, 50)
	testutil.RequireSliceNearlyEqual(t, clips[0].Image[0], s.Image[20], 0)
	testutil.RequireSliceNearlyEqual(t, clips[1].Image[0], s.Image[60], 0)

	requireShape(t, rest, 80, 50)
	if rest.TMin != 0 {
		t.Fatalf("remainder TMin = %v, want 0", rest.TMin)
	}
	testutil.RequireSliceNearlyEqual(t, rest.Image[20], s.Image[30], 0)
	testutil.RequireSliceNearlyEqual(t, rest.Image[50], s.Image[70], 0)
	testutil.RequireNearlyEqual(t, rest.TimeVector[20], 0.3, 1e-12)

	if len(rest.Annotations) != 1 {
		t.Fatalf("remainder annotations = %+v", rest.Annotations)
	}
	requireBox(t, rest.Annotations[0].Box, annotation.Box{TStart: 0.3, TEnd: 0.35, FStart: 0, FEnd: 5000})
}

func TestClipEverythingLeavesNoRemainder(t *testing.T) {
	s := rampSpec(t, 10, 2, 1, 1, "")
	clips, rest := s.Clip([]annotation.Box{{TStart: 0, TEnd: 10, FStart: 0, FEnd: 2}}, ClipOptions{InBins: true})
	if len(clips) != 1 || rest != nil {
		t.Fatalf("clips %d, remainder %v", len(clips), rest)
	}
}

func TestExtract(t *testing.T) {
	s := rampSpec(t, 100, 50, 0.01, 100, "")
	s = mustAnnotate(t, s, 1, 0.2, 0.5, 1000, 2000)
	s = mustAnnotate(t, s, 2, 0.7, 0.8)

	segs, rest := s.Extract(1, ExtractOptions{})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	seg := segs[0]
	requireShape(t, seg, 30, 10)
	testutil.RequireNearlyEqual(t, seg.FMin, 1000, 1e-9)
	testutil.RequireSliceNearlyEqual(t, seg.Image[0], s.Image[20][10:20], 0)
	if len(seg.Annotations) != 1 || seg.Annotations[0].Label != 1 {
		t.Fatalf("segment annotations = %+v", seg.Annotations)
	}
	requireBox(t, seg.Annotations[0].Box, annotation.Box{TStart: 0, TEnd: 0.3, FStart: 1000, FEnd: 2000})

	requireShape(t, rest, 70, 50)
	testutil.RequireSliceNearlyEqual(t, rest.Image[20], s.Image[50], 0)
	if len(rest.Annotations) != 1 || rest.Annotations[0].Label != 2 {
		t.Fatalf("remainder annotations = %+v", rest.Annotations)
	}
	requireBox(t, rest.Annotations[0].Box, annotation.Box{TStart: 0.4, TEnd: 0.5, FStart: 0, FEnd: 5000})
}

func TestExtractFixedLength(t *testing.T) {
	s := mustAnnotate(t, rampSpec(t, 20, 3, 1, 1, ""), 1, 2, 8)

	segs, rest := s.Extract(1, ExtractOptions{Length: 2, Center: true})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, seg := range segs {
		requireShape(t, seg, 2, 3)
		testutil.RequireSliceNearlyEqual(t, seg.Image[0], s.Image[2+2*i], 0)
	}
	requireShape(t, rest, 14, 3)
	if len(rest.Annotations) != 0 {
		t.Fatalf("extracted annotation left in remainder: %+v", rest.Annotations)
	}
}

func TestExtractMissingLabel(t *testing.T) {
	s := rampSpec(t, 10, 2, 1, 1, "")
	segs, rest := s.Extract(5, ExtractOptions{})
	if len(segs) != 0 {
		t.Fatalf("got %d segments, want 0", len(segs))
	}
	requireShape(t, rest, 10, 2)
}
