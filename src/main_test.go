package main

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"800x600", 800, 600, false},
		{"1024X768", 1024, 768, false},
		{"50 x 50", 50, 50, false},
		{"800", 0, 0, true},
		{"800x", 0, 0, true},
		{"axb", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSize(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSize(%q): %v", tt.in, err)
			continue
		}
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{TargetWidth: 800, TargetHeight: 600, Quality: 85, Workers: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.TargetWidth = 0 }},
		{"negative height", func(c *Config) { c.TargetHeight = -1 }},
		{"quality too low", func(c *Config) { c.Quality = 0 }},
		{"quality too high", func(c *Config) { c.Quality = 101 }},
		{"tiff output", func(c *Config) { c.OutputFormat = "tiff" }},
		{"bogus format", func(c *Config) { c.OutputFormat = "exe" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigFingerprint(t *testing.T) {
	a := Config{TargetWidth: 800, TargetHeight: 600, KeepAspect: true, Quality: 85}
	b := a
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical configs must share a fingerprint")
	}

	b.Quality = 90
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("quality change must alter the fingerprint")
	}

	c := a
	c.KeepAspect = false
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("aspect change must alter the fingerprint")
	}
}
