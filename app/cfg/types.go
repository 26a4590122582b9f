package cfg

import "log/slog"

type Cfg struct {
	// Query configuration
	Me          string
	CalFile     string
	CalFileSet  bool // --calfile was given explicitly
	Calendars   []string
	WindowDays  int
	WorkerCount int
	Timeout     int // seconds
	Radius      float64

	// Geocoding
	GeocoderKey string
	GeocoderURL string

	// Output
	JSON      bool
	ServeAddr string
	DBPath    string

	// Application metadata
	UserAgent string
	Timezone  string
	LogLevel  slog.Level
	Version   string
}
