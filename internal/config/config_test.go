package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("VOXPROMPT_PROXY_URL", "")
	t.Setenv("VOXPROMPT_LANGUAGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Proxy.BaseURL != "http://127.0.0.1:7080" {
		t.Fatalf("unexpected proxy URL: %q", cfg.Proxy.BaseURL)
	}
	if cfg.Recognizer.Model != "nova-2" {
		t.Fatalf("unexpected recognizer model: %q", cfg.Recognizer.Model)
	}
	if cfg.Recognizer.Language != "ru" {
		t.Fatalf("unexpected language: %q", cfg.Recognizer.Language)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Capture.GuardDelay != 100*time.Millisecond {
		t.Fatalf("unexpected guard delay: %v", cfg.Capture.GuardDelay)
	}
	if cfg.Capture.DrainTimeout != 4*time.Second {
		t.Fatalf("unexpected drain timeout: %v", cfg.Capture.DrainTimeout)
	}
	if cfg.Progress.TickInterval != 300*time.Millisecond || cfg.Progress.TickStep != 10 {
		t.Fatalf("unexpected progress defaults: %+v", cfg.Progress)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "  dg-key  ")
	t.Setenv("VOXPROMPT_PROXY_URL", "http://10.0.0.5:9000")
	t.Setenv("VOXPROMPT_LANGUAGE", "en")
	t.Setenv("VOXPROMPT_SAMPLE_RATE", "48000")
	t.Setenv("VOXPROMPT_GUARD_DELAY_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Recognizer.APIKey != "dg-key" {
		t.Fatalf("API key not trimmed: %q", cfg.Recognizer.APIKey)
	}
	if cfg.Proxy.BaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("unexpected proxy URL: %q", cfg.Proxy.BaseURL)
	}
	if cfg.Recognizer.Language != "en" {
		t.Fatalf("unexpected language: %q", cfg.Recognizer.Language)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Fatalf("unexpected sample rate: %d", cfg.Audio.SampleRate)
	}
	if cfg.Capture.GuardDelay != 250*time.Millisecond {
		t.Fatalf("unexpected guard delay: %v", cfg.Capture.GuardDelay)
	}
}

func TestLoadSanitizesInvalidValues(t *testing.T) {
	t.Setenv("VOXPROMPT_SAMPLE_RATE", "not-a-number")
	t.Setenv("VOXPROMPT_AUDIO_CHUNK_SIZE", "16")
	t.Setenv("VOXPROMPT_PROGRESS_STEP", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("bad sample rate not defaulted: %d", cfg.Audio.SampleRate)
	}
	if cfg.Capture.ChunkSize != 4096 {
		t.Fatalf("tiny chunk size not defaulted: %d", cfg.Capture.ChunkSize)
	}
	if cfg.Progress.TickStep != 10 {
		t.Fatalf("negative tick step not defaulted: %d", cfg.Progress.TickStep)
	}
}
