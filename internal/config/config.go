package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid config")

// Backend names the sink playback goes through.
type Backend string

const (
	BackendOto               Backend = "oto"
	BackendPortAudio         Backend = "portaudio"
	BackendPortAudioBlocking Backend = "portaudio-blocking"
	BackendWAV               Backend = "wav"
)

func (b *Backend) String() string { return string(*b) }

func (b *Backend) Set(s string) error {
	*b = Backend(strings.ToLower(s))
	return nil
}

// Config is fixed once the engine is built.
type Config struct {
	SampleRate      float64 `json:"sampleRate"`
	Voices          int     `json:"voices"`
	BufferSeconds   float64 `json:"bufferSeconds"`
	LowWater        float64 `json:"lowWater"` // fraction of capacity
	FramesPerBuffer int     `json:"framesPerBuffer"`
	IdleMillis      int     `json:"idleMillis"`
	Backend         Backend `json:"backend"`
	LogLevel        string  `json:"logLevel"`
}

func Default() *Config {
	return &Config{
		SampleRate:      48000,
		Voices:          3,
		BufferSeconds:   0.5,
		LowWater:        0.4,
		FramesPerBuffer: 32,
		IdleMillis:      5,
		Backend:         BackendOto,
		LogLevel:        "INFO",
	}
}

// Load reads path on top of the defaults. A missing file yields defaults.
func Load(path string) (*Config, error) { return load(path, Default()) }

func load(path string, base *Config) (*Config, error) {
	c := *base
	cfg := &c
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Bind registers flags that override c when fs is parsed.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.Voices, "voices", c.Voices, "voices per instrument")
	fs.Float64Var(&c.BufferSeconds, "buffer", c.BufferSeconds, "sample buffer length in seconds")
	fs.Float64Var(&c.LowWater, "lowwater", c.LowWater, "refill threshold as a fraction of the buffer")
	fs.IntVar(&c.FramesPerBuffer, "frames", c.FramesPerBuffer, "device frames per buffer")
	fs.IntVar(&c.IdleMillis, "idle", c.IdleMillis, "producer sleep in ms while the buffer is above the low-water mark")
	fs.Var(&c.Backend, "backend", "oto, portaudio, portaudio-blocking or wav")
	fs.StringVar(&c.LogLevel, "log", c.LogLevel, "log level: DEBUG, INFO, ERROR or NONE")
}

func (c *Config) Validate() error {
	switch {
	case !(c.SampleRate > 0):
		return fmt.Errorf("%w: sampleRate %v", ErrInvalid, c.SampleRate)
	case c.Voices < 1:
		return fmt.Errorf("%w: voices %d", ErrInvalid, c.Voices)
	case c.Capacity() < 1:
		return fmt.Errorf("%w: bufferSeconds %v holds no samples", ErrInvalid, c.BufferSeconds)
	case !(c.LowWater > 0 && c.LowWater <= 1):
		return fmt.Errorf("%w: lowWater %v must be in (0,1]", ErrInvalid, c.LowWater)
	case c.FramesPerBuffer < 1:
		return fmt.Errorf("%w: framesPerBuffer %d", ErrInvalid, c.FramesPerBuffer)
	case c.IdleMillis < 0:
		return fmt.Errorf("%w: idleMillis %d", ErrInvalid, c.IdleMillis)
	}
	switch c.Backend {
	case BackendOto, BackendPortAudio, BackendPortAudioBlocking, BackendWAV:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	return nil
}

// Capacity is the ring buffer size in samples.
func (c *Config) Capacity() int { return int(c.SampleRate * c.BufferSeconds) }

// LowWaterMark is the refill threshold in samples.
func (c *Config) LowWaterMark() int { return int(float64(c.Capacity()) * c.LowWater) }

func (c *Config) Idle() time.Duration { return time.Duration(c.IdleMillis) * time.Millisecond }

// Parse binds the config flags and a -config flag on fs, then parses args.
// Values come from base, then the -config file, then flags given in args.
func Parse(fs *flag.FlagSet, args []string, base *Config) (*Config, error) {
	cfg := *base
	path := fs.String("config", "", "JSON config file")
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path != "" {
		loaded, err := load(*path, base)
		if err != nil {
			return nil, err
		}
		over := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		loaded.Bind(over)
		var serr error
		fs.Visit(func(f *flag.Flag) {
			if over.Lookup(f.Name) != nil && serr == nil {
				serr = over.Set(f.Name, f.Value.String())
			}
		})
		if serr != nil {
			return nil, serr
		}
		cfg = *loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
