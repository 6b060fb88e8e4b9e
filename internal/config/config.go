package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/chineseneo/fuel-bot/internal/fuel"
	"github.com/chineseneo/fuel-bot/internal/fuel/sources"
	"github.com/chineseneo/fuel-bot/internal/mail"
)

// AppConfig holds all configuration for fuel-bot.
type AppConfig struct {
	// Target fuel grade code, e.g. "U98".
	Grade string
	// Target state for the aggregator's state-wide lowest, e.g. "VIC".
	State string

	// Suburb label used in the report subject and body.
	Suburb string
	// SentinelKey is the display key of the synthetic state-wide lowest series.
	SentinelKey string
	// RankSentinel includes the sentinel in the ranked list when true.
	RankSentinel bool
	// SeriesKeys is the fixed, ordered list of display keys to chart.
	SeriesKeys []string
	// Stations is the static allow-list with display-name mappings.
	Stations []fuel.Station
	// Box is the geographic query area for the station-box source.
	Box sources.BoundingBox

	StationBoxURL string
	AggregatorURL string

	// RetentionDays bounds the history window.
	RetentionDays int
	HistoryPath   string

	// Location for calendar-day attribution.
	Location *time.Location

	// FetchTimeout bounds each upstream source call.
	FetchTimeout time.Duration

	Mail mail.Config

	// DailyAt is the local time ("HH:MM") of the daemon-mode daily run.
	DailyAt string
	Port    string

	LogLevel string
}

// stationsFile is the TOML file holding the allow-list and display mapping.
type stationsFile struct {
	Suburb       string              `toml:"suburb"`
	Sentinel     string              `toml:"sentinel"`
	RankSentinel bool                `toml:"rank_sentinel"`
	Series       []string            `toml:"series"`
	Box          sources.BoundingBox `toml:"box"`
	Stations     []fuel.Station      `toml:"stations"`
}

// Load reads configuration from environment with sensible defaults, plus the
// stations TOML file named by STATIONS_FILE.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; values come from the environment.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Grade = getenvDefault("FUEL_GRADE", "U98")
	cfg.State = getenvDefault("FUEL_STATE", "VIC")

	cfg.StationBoxURL = getenvDefault("STATIONBOX_URL", "https://petrolspy.com.au/webservice-1/station/box")
	cfg.AggregatorURL = getenvDefault("AGGREGATOR_URL", "https://projectzerothree.info/api.php?format=json")

	cfg.RetentionDays = getenvInt("RETENTION_DAYS", 45)
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be positive")
	}
	cfg.HistoryPath = getenvDefault("HISTORY_PATH", "data/history.json")

	tzName := getenvDefault("TIMEZONE", "Australia/Melbourne")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	timeoutStr := getenvDefault("FETCH_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = timeout

	cfg.DailyAt = getenvDefault("DAILY_AT", "07:30")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.Mail = mail.Config{
		Provider:      getenvDefault("MAIL_PROVIDER", "mock"),
		SMTPServer:    getenvDefault("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:      getenvInt("SMTP_PORT", 587),
		Sender:        os.Getenv("EMAIL_SENDER"),
		Recipient:     os.Getenv("EMAIL_RECEIVER"),
		AppPassword:   os.Getenv("EMAIL_APP_PASSWORD"),
		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
	}

	stationsPath := getenvDefault("STATIONS_FILE", "stations.toml")
	if err := cfg.loadStations(stationsPath); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadStations reads the allow-list file and fills the station-derived
// fields. The series list defaults to the station display keys (in file
// order) followed by the sentinel.
func (c *AppConfig) loadStations(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading stations file %s: %w", path, err)
	}

	var sf stationsFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parsing stations file %s: %w", path, err)
	}

	if len(sf.Stations) == 0 {
		return fmt.Errorf("stations file %s lists no stations", path)
	}

	c.Suburb = sf.Suburb
	if c.Suburb == "" {
		c.Suburb = "Wantirna South"
	}
	c.SentinelKey = sf.Sentinel
	if c.SentinelKey == "" {
		c.SentinelKey = c.State + " Lowest"
	}
	c.RankSentinel = sf.RankSentinel
	c.Box = sf.Box
	c.Stations = sf.Stations

	c.SeriesKeys = sf.Series
	if len(c.SeriesKeys) == 0 {
		seen := make(map[string]bool)
		for _, st := range sf.Stations {
			key := st.Display
			if key == "" {
				key = st.Name
			}
			if !seen[key] {
				seen[key] = true
				c.SeriesKeys = append(c.SeriesKeys, key)
			}
		}
		c.SeriesKeys = append(c.SeriesKeys, c.SentinelKey)
	}

	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
