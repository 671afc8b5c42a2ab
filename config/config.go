// Package config holds the JSON configuration of spectrogram construction,
// interbreeding and the spectrogram database.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/RyanBlaney/spectro/transcode"
	"github.com/dustin/go-humanize"
)

// SpectrogramType selects the transform front-end
type SpectrogramType string

const (
	TypeMagnitude SpectrogramType = "Mag"
	TypePower     SpectrogramType = "Pow"
	TypeMel       SpectrogramType = "Mel"
	TypeCQT       SpectrogramType = "CQT"
)

// ParseSpectrogramType accepts the short names and their long forms, case-insensitively
func ParseSpectrogramType(name string) (SpectrogramType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mag", "magnitude", "":
		return TypeMagnitude, nil
	case "pow", "power":
		return TypePower, nil
	case "mel":
		return TypeMel, nil
	case "cqt":
		return TypeCQT, nil
	default:
		return "", fmt.Errorf("unknown spectrogram type: %q", name)
	}
}

// UnmarshalJSON normalises the type name
func (t *SpectrogramType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSpectrogramType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SpectrogramConfig configures how spectrograms are computed from audio
type SpectrogramConfig struct {
	Type             SpectrogramType `json:"type"`
	Rate             int             `json:"rate"`               // Hz, 0 keeps the file's rate
	WindowSize       float64         `json:"window_size"`        // seconds
	StepSize         float64         `json:"step_size"`          // seconds
	WindowFunction   string          `json:"window_function"`    // "hamming", "hann", "blackman", "bartlett", "rectangular"
	LowFrequencyCut  float64         `json:"low_frequency_cut"`  // Hz, also the lowest CQT bin
	HighFrequencyCut float64         `json:"high_frequency_cut"` // Hz, 0 means Nyquist
	Length           float64         `json:"length"`             // seconds per spectrogram, 0 means whole file
	Overlap          float64         `json:"overlap"`            // fraction of Length shared by consecutive segments
	BinsPerOctave    int             `json:"bins_per_octave"`    // CQT only
	Decibel          bool            `json:"decibel"`
	AdjustDuration   bool            `json:"adjust_duration"` // round the duration up to a whole number of steps

	// Mel front-end
	NumFilters int     `json:"num_filters"`
	NumCeps    int     `json:"num_ceps"`
	CepLifter  float64 `json:"cep_lifter"`
}

// DefaultSpectrogramConfig returns the default spectrogram configuration
func DefaultSpectrogramConfig() SpectrogramConfig {
	return SpectrogramConfig{
		Type:            TypeMagnitude,
		Rate:            0,
		WindowSize:      0.1,
		StepSize:        0.01,
		WindowFunction:  "hamming",
		LowFrequencyCut: 0,
		BinsPerOctave:   32,
		Decibel:         true,
		AdjustDuration:  true,
		NumFilters:      40,
		NumCeps:         20,
		CepLifter:       20,
	}
}

// Validate checks the spectrogram configuration
func (c SpectrogramConfig) Validate() error {
	if _, err := ParseSpectrogramType(string(c.Type)); err != nil {
		return err
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative: %d", c.Rate)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive: %v", c.WindowSize)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive: %v", c.StepSize)
	}
	if c.LowFrequencyCut < 0 {
		return fmt.Errorf("low frequency cut must not be negative: %v", c.LowFrequencyCut)
	}
	if c.HighFrequencyCut != 0 && c.HighFrequencyCut <= c.LowFrequencyCut {
		return fmt.Errorf("high frequency cut (%v) must exceed low frequency cut (%v)", c.HighFrequencyCut, c.LowFrequencyCut)
	}
	if c.Length < 0 {
		return fmt.Errorf("length must not be negative: %v", c.Length)
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("overlap must be in [0, 1): %v", c.Overlap)
	}
	if c.Type == TypeCQT {
		if c.BinsPerOctave <= 0 {
			return fmt.Errorf("bins per octave must be positive: %d", c.BinsPerOctave)
		}
		if c.LowFrequencyCut <= 0 {
			return fmt.Errorf("CQT needs a positive low frequency cut")
		}
	}
	if c.Type == TypeMel && c.NumCeps >= c.NumFilters {
		return fmt.Errorf("number of cepstral coefficients (%d) must be below the number of filters (%d)", c.NumCeps, c.NumFilters)
	}
	return nil
}

// Range is a closed [min, max] interval sampled uniformly
type Range [2]float64

// Fixed reports whether the range holds a single value
func (r Range) Fixed() bool {
	return r[0] == r[1]
}

func (r Range) validate(name string) error {
	if r[0] > r[1] {
		return fmt.Errorf("%s range is inverted: [%v, %v]", name, r[0], r[1])
	}
	return nil
}

// InterbreedConfig configures synthetic spectrogram generation
type InterbreedConfig struct {
	Num              int     `json:"num"`
	Smooth           bool    `json:"smooth"`
	SmoothPar        float64 `json:"smooth_par"`
	Scale            Range   `json:"scale"`
	TScale           Range   `json:"t_scale"`
	FScale           Range   `json:"f_scale"`
	Seed             uint64  `json:"seed"`
	MinPeakDiff      float64 `json:"min_peak_diff"` // 0 disables the peak gate
	ReduceTonalNoise bool    `json:"reduce_tonal_noise"`
	MaxAttempts      int     `json:"max_attempts"` // 0 means 100 draws per requested spectrogram
}

// DefaultInterbreedConfig returns the default interbreed configuration
func DefaultInterbreedConfig() InterbreedConfig {
	return InterbreedConfig{
		Num:       10,
		Smooth:    true,
		SmoothPar: 5,
		Scale:     Range{1, 1},
		TScale:    Range{1, 1},
		FScale:    Range{1, 1},
		Seed:      1,
	}
}

// Validate checks the interbreed configuration
func (c InterbreedConfig) Validate() error {
	if c.Num <= 0 {
		return fmt.Errorf("num must be positive: %d", c.Num)
	}
	if c.Smooth && c.SmoothPar <= 0 {
		return fmt.Errorf("smoothing parameter must be positive: %v", c.SmoothPar)
	}
	for name, r := range map[string]Range{"scale": c.Scale, "t_scale": c.TScale, "f_scale": c.FScale} {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	if c.TScale[0] <= 0 || c.FScale[0] <= 0 {
		return fmt.Errorf("axis scale factors must be positive")
	}
	if c.MinPeakDiff < 0 {
		return fmt.Errorf("min peak diff must not be negative: %v", c.MinPeakDiff)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative: %d", c.MaxAttempts)
	}
	return nil
}

// ByteSize is a size in bytes that unmarshals from a number or a
// human-readable string such as "1 GB" or "500MiB"
type ByteSize uint64

// UnmarshalJSON accepts numbers and humanized strings
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = ByteSize(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("byte size must be a number or a string: %w", err)
	}
	parsed, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	*b = ByteSize(parsed)
	return nil
}

// String formats the size in SI units
func (b ByteSize) String() string {
	return humanize.Bytes(uint64(b))
}

// Database write modes
const (
	ModeWrite  = "w"
	ModeAppend = "a"
)

// DatabaseConfig configures the spectrogram database writer
type DatabaseConfig struct {
	MaxSize        ByteSize `json:"max_size"`        // rotate to a new file above this size
	MaxAnnotations int      `json:"max_annotations"` // annotations stored per spectrogram
	Mode           string   `json:"mode"`            // "w" or "a"
	Group          string   `json:"group"`           // default group path

	// IgnoreWrongShape skips spectrograms whose shape differs from the first
	// one written instead of storing them.
	IgnoreWrongShape bool `json:"ignore_wrong_shape"`
}

// DefaultDatabaseConfig returns the default database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		MaxSize:        ByteSize(1_000_000_000),
		MaxAnnotations: 10,
		Mode:           ModeWrite,
		Group:          "/",
	}
}

// Validate checks the database configuration
func (c DatabaseConfig) Validate() error {
	if c.MaxSize == 0 {
		return fmt.Errorf("max size must be positive")
	}
	if c.MaxAnnotations < 0 {
		return fmt.Errorf("max annotations must not be negative: %d", c.MaxAnnotations)
	}
	if c.Mode != ModeWrite && c.Mode != ModeAppend {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeWrite, ModeAppend, c.Mode)
	}
	return nil
}

// Config is the top-level configuration document
type Config struct {
	LogLevel    string                  `json:"log_level"`
	Spectrogram SpectrogramConfig       `json:"spectrogram"`
	Interbreed  InterbreedConfig        `json:"interbreed"`
	Database    DatabaseConfig          `json:"database"`
	Decoder     transcode.DecoderConfig `json:"decoder"`
}

// Default returns a configuration with every section at its defaults
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Spectrogram: DefaultSpectrogramConfig(),
		Interbreed:  DefaultInterbreedConfig(),
		Database:    DefaultDatabaseConfig(),
		Decoder:     *transcode.DefaultDecoderConfig(),
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Spectrogram.Validate(); err != nil {
		return fmt.Errorf("spectrogram: %w", err)
	}
	if err := c.Interbreed.Validate(); err != nil {
		return fmt.Errorf("interbreed: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Decoder.Validate(); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	return nil
}

// Parse decodes a JSON document over the defaults. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses a JSON configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}
