package cfg

import (
	"cmp"
	"fmt"
	"time"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// Options are the process-wide flags shared by every command.
type Options struct {
	// HTTP configuration
	UserAgent string  `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (default: WikiAPIConnector/<version>)"`
	Timeout   int     `long:"timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	RateLimit float64 `long:"rate-limit" env:"RATE_LIMIT" default:"5" description:"Maximum outbound requests per second (0 disables limiting)"`

	// Response cache configuration
	CachePath string `long:"cache-path" env:"CACHE_PATH" default:"wikiapi_cache.sqlite" description:"SQLite file used to cache catalog API and search responses"`
	CacheTTL  int    `long:"cache-ttl" env:"CACHE_TTL" default:"86400" description:"Cached response lifetime in seconds"`
	NoCache   bool   `long:"no-cache" env:"NO_CACHE" description:"Disable the response cache"`

	// Destination repository
	CommonsAPI   string `long:"commons-api" env:"COMMONS_API" default:"https://commons.wikimedia.org/w/api.php" description:"MediaWiki API endpoint of the destination repository"`
	CommonsToken string `long:"commons-token" env:"COMMONS_ACCESS_TOKEN" description:"OAuth access token sent as a bearer token to the destination repository"`
	WorkDir      string `long:"work-dir" env:"WORK_DIR" description:"Directory for staging downloaded images (default: system temp dir)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Cfg is the validated form of Options.
type Cfg struct {
	UserAgent string
	Timeout   time.Duration
	RateLimit float64

	CachePath string
	CacheTTL  time.Duration
	NoCache   bool

	CommonsAPI   string
	CommonsToken string
	WorkDir      string

	Debug   bool
	Version string
}

func (o *Options) Cfg() (*Cfg, error) {
	if o.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", o.Timeout)
	}
	if o.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be non-negative, got %v", o.RateLimit)
	}
	if o.CacheTTL < 0 {
		return nil, fmt.Errorf("cache TTL must be non-negative, got %d", o.CacheTTL)
	}
	if o.CommonsAPI == "" {
		return nil, fmt.Errorf("commons API endpoint is required")
	}

	return &Cfg{
		UserAgent:    cmp.Or(o.UserAgent, "WikiAPIConnector/"+GetVersion()),
		Timeout:      time.Duration(o.Timeout) * time.Second,
		RateLimit:    o.RateLimit,
		CachePath:    o.CachePath,
		CacheTTL:     time.Duration(o.CacheTTL) * time.Second,
		NoCache:      o.NoCache || o.CachePath == "" || o.CacheTTL == 0,
		CommonsAPI:   o.CommonsAPI,
		CommonsToken: o.CommonsToken,
		WorkDir:      o.WorkDir,
		Debug:        o.Debug,
		Version:      GetVersion(),
	}, nil
}
