package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DatabaseSchemePostgres is the postgres database scheme identifier
	DatabaseSchemePostgres = "postgres"

	// DefaultPostInterval is how often the bot re-runs the monitor and posts.
	DefaultPostInterval = 7 * 24 * time.Hour
)

type Config struct {
	NodeAPIURL      string        // Cirrus node API base URL
	ContractAddress string        // SDA DAO contract address
	SenderAddress   string        // sender address used for local (read-only) calls
	Lookback        uint64        // block lookback override; 0 = derive from federation size
	DBDialect       string        // postgres only
	DBDsn           string        // DSN string passed to GORM driver
	DiscordToken    string        // bot mode only
	DiscordChannel  string        // bot mode only
	PostInterval    time.Duration // bot mode posting cadence
	Debug           bool          // if true: verbose logs
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func getenvUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var n uint64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// parseDatabaseURL interprets DATABASE_URL and returns (dialect, dsn).
// Supported schemes: postgres, postgresql.
func parseDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case DatabaseSchemePostgres, "postgresql":
		// GORM postgres driver accepts URL DSN as-is
		return DatabaseSchemePostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}
}

func Load() Config {
	cfg := Config{
		NodeAPIURL:      getenv("NODE_API_URL", "http://localhost:37223"),
		ContractAddress: strings.TrimSpace(os.Getenv("SDA_CONTRACT_ADDRESS")),
		SenderAddress:   strings.TrimSpace(os.Getenv("SENDER_ADDRESS")),
		Lookback:        getenvUint("LOOKBACK", 0),
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		DiscordChannel:  os.Getenv("DISCORD_CHANNEL_ID"),
		PostInterval:    getenvDuration("POST_INTERVAL", DefaultPostInterval),
		Debug:           getenvBool("DEBUG", false),
	}

	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		if dialect, dsn, err := parseDatabaseURL(dbURL); err == nil {
			cfg.DBDialect = dialect
			cfg.DBDsn = dsn
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid DATABASE_URL, disabling persistence: %v\n", err)
		}
	}

	return cfg
}

// Validate checks that the settings the monitor cannot run without are
// present. It must pass before any node query is issued.
func (c Config) Validate() error {
	if c.NodeAPIURL == "" {
		return fmt.Errorf("NODE_API_URL is not set")
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("SDA_CONTRACT_ADDRESS is not set")
	}
	if c.SenderAddress == "" {
		return fmt.Errorf("SENDER_ADDRESS is not set")
	}
	return nil
}

// ValidateBot checks the extra settings required for scheduled Discord posting.
func (c Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}
	if c.DiscordChannel == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID is not set")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("node=%s contract=%s db=%s", c.NodeAPIURL, c.ContractAddress, c.DBDialect)
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	return fmt.Sprintf(
		"node=%s contract=%s sender=%s lookback=%d db=%s dsn=%s interval=%s",
		c.NodeAPIURL,
		c.ContractAddress,
		c.SenderAddress,
		c.Lookback,
		c.DBDialect,
		maskDSN(c.DBDialect, c.DBDsn),
		c.PostInterval,
	)
}

func maskDSN(dialect, dsn string) string {
	switch strings.ToLower(dialect) {
	case DatabaseSchemePostgres:
		if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
			if u.User != nil {
				username := u.User.Username()
				u.User = url.User(username)
			}
			return u.String()
		}
		// Fallback for DSN as key-value list
		parts := strings.Fields(dsn)
		for i, p := range parts {
			lower := strings.ToLower(p)
			if strings.HasPrefix(lower, "password=") {
				parts[i] = "password=***"
			}
		}
		return strings.Join(parts, " ")
	default:
		return dsn
	}
}
