package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestOptionsCfg(t *testing.T) {
	opts := &Options{
		Timeout:    15,
		RateLimit:  2.5,
		CachePath:  "cache.sqlite",
		CacheTTL:   3600,
		CommonsAPI: "https://commons.example.org/w/api.php",
		Debug:      true,
	}

	cfg, err := opts.Cfg()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Timeout != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", cfg.Timeout)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("Expected cache TTL 1h, got %v", cfg.CacheTTL)
	}
	if cfg.NoCache {
		t.Error("Expected cache to be enabled")
	}
	if cfg.UserAgent != "WikiAPIConnector/"+GetVersion() {
		t.Errorf("Expected default user agent, got '%s'", cfg.UserAgent)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestOptionsCfgCustomUserAgent(t *testing.T) {
	opts := &Options{Timeout: 30, CommonsAPI: "https://commons.example.org/w/api.php", UserAgent: "Custom/2.0"}

	cfg, err := opts.Cfg()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserAgent != "Custom/2.0" {
		t.Errorf("Expected user agent 'Custom/2.0', got '%s'", cfg.UserAgent)
	}
}

func TestOptionsCfgZeroTTLDisablesCache(t *testing.T) {
	opts := &Options{Timeout: 30, CachePath: "cache.sqlite", CacheTTL: 0, CommonsAPI: "https://commons.example.org/w/api.php"}

	cfg, err := opts.Cfg()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.NoCache {
		t.Error("Expected zero TTL to disable the cache")
	}
}

func TestOptionsCfgInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero timeout", Options{Timeout: 0, CommonsAPI: "x"}},
		{"negative rate", Options{Timeout: 1, RateLimit: -1, CommonsAPI: "x"}},
		{"negative ttl", Options{Timeout: 1, CacheTTL: -5, CommonsAPI: "x"}},
		{"missing commons api", Options{Timeout: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.opts.Cfg(); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}
