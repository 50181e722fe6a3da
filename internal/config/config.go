package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the desktop app.
type Config struct {
	Proxy      ProxyConfig
	Recognizer RecognizerConfig
	Audio      AudioConfig
	Capture    CaptureConfig
	Progress   ProgressConfig
}

// ProxyConfig points at the chat-completion proxy server.
type ProxyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RecognizerConfig configures the streaming speech recognizer.
type RecognizerConfig struct {
	APIKey       string
	APIBaseURL   string
	Model        string
	Language     string
	Alternatives int
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

// CaptureConfig tunes the capture session lifecycle. GuardDelay is the
// pause between stopping a previous recognition span and re-arming;
// DrainTimeout bounds the recognizer's close handshake on stop.
type CaptureConfig struct {
	GuardDelay   time.Duration
	ChunkSize    int
	DrainTimeout time.Duration
}

// ProgressConfig tunes the cosmetic send-progress simulator.
type ProgressConfig struct {
	TickInterval time.Duration
	TickStep     int
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Proxy: ProxyConfig{
			BaseURL: envOrDefault("VOXPROMPT_PROXY_URL", "http://127.0.0.1:7080"),
			Timeout: time.Duration(envOrDefaultInt("VOXPROMPT_PROXY_TIMEOUT_MS", 60000)) * time.Millisecond,
		},
		Recognizer: RecognizerConfig{
			APIKey:       strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:   envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:        envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:     envOrDefault("VOXPROMPT_LANGUAGE", "ru"),
			Alternatives: envOrDefaultInt("VOXPROMPT_ALTERNATIVES", 1),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("VOXPROMPT_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("VOXPROMPT_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("VOXPROMPT_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("VOXPROMPT_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("VOXPROMPT_CHANNELS", 1),
		},
		Capture: CaptureConfig{
			GuardDelay:   time.Duration(envOrDefaultInt("VOXPROMPT_GUARD_DELAY_MS", 100)) * time.Millisecond,
			ChunkSize:    envOrDefaultInt("VOXPROMPT_AUDIO_CHUNK_SIZE", 4096),
			DrainTimeout: time.Duration(envOrDefaultInt("VOXPROMPT_STREAM_DRAIN_MS", 4000)) * time.Millisecond,
		},
		Progress: ProgressConfig{
			TickInterval: time.Duration(envOrDefaultInt("VOXPROMPT_PROGRESS_TICK_MS", 300)) * time.Millisecond,
			TickStep:     envOrDefaultInt("VOXPROMPT_PROGRESS_STEP", 10),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Capture.ChunkSize < 256 {
		cfg.Capture.ChunkSize = 4096
	}
	if cfg.Capture.GuardDelay < 0 {
		cfg.Capture.GuardDelay = 100 * time.Millisecond
	}
	if cfg.Capture.DrainTimeout <= 0 {
		cfg.Capture.DrainTimeout = 4 * time.Second
	}
	if cfg.Progress.TickStep <= 0 {
		cfg.Progress.TickStep = 10
	}
	if cfg.Progress.TickInterval <= 0 {
		cfg.Progress.TickInterval = 300 * time.Millisecond
	}
	if cfg.Recognizer.Alternatives <= 0 {
		cfg.Recognizer.Alternatives = 1
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
