package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	DefaultLocation = "may day cafe, minneapolis, mn 55407"
	DefaultCalFile  = "calendars.txt"
	DefaultLogLevel = slog.LevelError
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Verbose []bool `short:"v" description:"More verbose, repeatable (one log level per flag)"`
	Quiet   []bool `short:"q" description:"Quieter, repeatable (one log level per flag)"`

	Me        string   `long:"me" default:"may day cafe, minneapolis, mn 55407" description:"My location (quoted string)"`
	CalFile   string   `long:"calfile" env:"CALFILE" description:"File of calendars, one per line (.yml/.yaml accepted) [default: calendars.txt]"`
	Calendars []string `short:"c" long:"calendar" description:"Append a calendar (email or feed URL) to the list of calendars"`

	WindowDays  int     `long:"window-days" env:"WINDOW_DAYS" default:"30" description:"Days before and after now to query"`
	WorkerCount int     `long:"workers" env:"WORKER_COUNT" default:"4" description:"Number of calendars fetched in parallel"`
	Timeout     int     `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	Radius      float64 `long:"radius" env:"RADIUS" description:"Drop events farther than this (degrees, 0 = unlimited)"`

	GeocoderKey string `long:"geocoder-key" env:"GEOCODER_API_KEY" description:"Geocoding service API key"`
	GeocoderURL string `long:"geocoder-url" env:"GEOCODER_URL" default:"http://maps.google.com/maps/geo" description:"Geocoding service endpoint"`

	JSON      bool   `long:"json" description:"Print results as JSON"`
	ServeAddr string `long:"serve" env:"SERVE_ADDR" description:"Serve results over HTTP on this address (e.g. :8080) until interrupted"`
	DBPath    string `long:"db" env:"DB_PATH" description:"SQLite file for event snapshots and the geocode cache (optional)"`

	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Local Events/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for printed event times (e.g., UTC, America/Chicago)"`
}

// Load parses os.Args. It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.LongDescription = "Given my location, and some calendars, what is nearby?"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest)
	}

	cfg := &Cfg{
		Me:          raw.Me,
		CalFile:     cmp.Or(raw.CalFile, DefaultCalFile),
		CalFileSet:  raw.CalFile != "",
		Calendars:   raw.Calendars,
		WindowDays:  raw.WindowDays,
		WorkerCount: max(raw.WorkerCount, 1),
		Timeout:     raw.Timeout,
		Radius:      raw.Radius,
		GeocoderKey: raw.GeocoderKey,
		GeocoderURL: raw.GeocoderURL,
		JSON:        raw.JSON,
		ServeAddr:   raw.ServeAddr,
		DBPath:      raw.DBPath,
		UserAgent:   raw.UserAgent,
		Timezone:    raw.Timezone,
		LogLevel:    LogLevel(len(raw.Verbose), len(raw.Quiet)),
		Version:     GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// LogLevel moves one slog level down per -v and one up per -q, starting at Error.
func LogLevel(verbose, quiet int) slog.Level {
	return DefaultLogLevel + slog.Level(4*(quiet-verbose))
}

// RequestTimeout returns the HTTP timeout as time.Duration
func (c *Cfg) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c *Cfg) validate() error {
	nonNegative := map[string]float64{
		"window days": float64(c.WindowDays),
		"timeout":     float64(c.Timeout),
		"radius":      c.Radius,
	}
	for name, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
