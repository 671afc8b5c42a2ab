package spectrogram

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/RyanBlaney/spectro/algorithms/common"
	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/logging"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sink receives composites instead of collecting them in memory
type Sink interface {
	Cd(group string) error
	Write(s *Spectrogram) error
	Close() error
}

// Predicate decides whether a composite of a and b is kept
type Predicate func(a, b, composite *Spectrogram) bool

// DefaultSinkGroup is where Interbreed writes composites
const DefaultSinkGroup = "/spec"

// InterbreedOptions configures Interbreed
type InterbreedOptions struct {
	config.InterbreedConfig

	Rand      *rand.Rand // nil seeds a PCG source from Seed
	Validate  Predicate  // nil accepts every composite
	Sink      Sink       // nil collects composites in memory; the caller closes it
	SinkGroup string     // group composites are written to, DefaultSinkGroup if empty
	Logger    logging.Logger
}

// Interbreed synthesizes Num spectrograms by adding a randomly drawn member
// of groupB onto a randomly drawn member of groupA. Each draw picks a gain
// from Scale, axis factors from TScale and FScale, and a delay uniformly
// within the duration difference of the pair. Composites failing the peak
// gate or the predicate are discarded; after MaxAttempts draws the function
// gives up with ErrRejected, returning what it has.
func Interbreed(groupA, groupB []*Spectrogram, opts InterbreedOptions) ([]*Spectrogram, error) {
	cfg := opts.InterbreedConfig
	if len(groupA) == 0 || len(groupB) == 0 {
		return nil, fmt.Errorf("%w: interbreed needs two non-empty groups", ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	validate := opts.Validate
	if validate == nil {
		validate = func(_, _, _ *Spectrogram) bool { return true }
	}
	group := opts.SinkGroup
	if group == "" {
		group = DefaultSinkGroup
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 100 * cfg.Num
	}

	logger := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
		"component": "spectrogram",
		"function":  "Interbreed",
	})
	logger.Debug("Starting interbreed", logging.Fields{
		"num":      cfg.Num,
		"group_a":  len(groupA),
		"group_b":  len(groupB),
		"attempts": attempts,
	})

	gain := distuv.Uniform{Min: cfg.Scale[0], Max: cfg.Scale[1], Src: rng}
	tScale := distuv.Uniform{Min: cfg.TScale[0], Max: cfg.TScale[1], Src: rng}
	fScale := distuv.Uniform{Min: cfg.FScale[0], Max: cfg.FScale[1], Src: rng}

	var out []*Spectrogram
	produced, rejected := 0, 0
	for try := 0; produced < cfg.Num; try++ {
		if try >= attempts {
			logger.Warn("Interbreed attempt budget exhausted", logging.Fields{
				"produced": produced,
				"rejected": rejected,
			})
			return out, fmt.Errorf("%w: produced %d of %d after %d attempts", ErrRejected, produced, cfg.Num, attempts)
		}

		a := groupA[rng.IntN(len(groupA))]
		b := groupB[rng.IntN(len(groupB))]
		sf, sft, sff := gain.Rand(), tScale.Rand(), fScale.Rand()

		delay := 0.0
		if dt := a.Duration() - b.Duration(); dt != 0 {
			delay = math.Abs(dt) * rng.Float64()
		}

		if cfg.MinPeakDiff > 0 {
			if diff := sf*common.MatrixMax(b.Image) - common.MatrixMax(a.Image); diff < cfg.MinPeakDiff {
				rejected++
				continue
			}
		}

		addOpts := []AddOption{WithDelay(delay), WithGain(sf), WithTimeScale(sft), WithFreqScale(sff)}
		if cfg.Smooth {
			addOpts = append(addOpts, WithSmoothing(cfg.SmoothPar))
		}
		composite, err := a.Add(b, addOpts...)
		if err != nil {
			return out, fmt.Errorf("interbreed: %w", err)
		}

		if !validate(a, b, composite) {
			rejected++
			continue
		}

		if cfg.ReduceTonalNoise {
			if composite, err = composite.ReduceTonalNoise(TonalMedian, 0); err != nil {
				return out, fmt.Errorf("interbreed: %w", err)
			}
		}

		if opts.Sink != nil {
			if err := opts.Sink.Cd(group); err != nil {
				return out, fmt.Errorf("interbreed: sink: %w", err)
			}
			if err := opts.Sink.Write(composite); err != nil {
				return out, fmt.Errorf("interbreed: sink: %w", err)
			}
		} else {
			out = append(out, composite)
		}
		produced++
	}

	logger.Debug("Interbreed completed", logging.Fields{
		"produced": produced,
		"rejected": rejected,
	})
	return out, nil
}
