package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Redis
	Log
	Auth
	Reconcile
	Scheduler
	BankGateway
	CheckoutGateway
}

// Server is the configuration for the server
type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"contribution_reconciler"`
	Username        string `env:"DB_USERNAME" envDefault:"contribution_reconciler"`
	Password        string `env:"DB_PASSWORD" envDefault:"contribution_reconciler"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
	AutoMigrate     string `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// MigrationDSN returns the DSN understood by the pgx/v5 migrate driver.
func (c PostgreSQL) MigrationDSN() string {
	dsn := c.DSN()
	return "pgx5" + dsn[strings.Index(dsn, "://"):]
}

// Redis holds the lock store and cache connection.
type Redis struct {
	Addr            string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password        string `env:"REDIS_PASSWORD" envDefault:""`
	DB              string `env:"REDIS_DB" envDefault:"0"`
	MaxConnAttempts string `env:"REDIS_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

type Log struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	File    string `env:"LOG_FILE" envDefault:""`
	Console string `env:"LOG_CONSOLE" envDefault:"true"`
}

// Auth holds the shared secrets of the cron and admin endpoints.
type Auth struct {
	CronSecret string `env:"CRON_SECRET" envDefault:""`
	AdminToken string `env:"ADMIN_TOKEN" envDefault:""`
}

// Reconcile tunes the poll cycle, the retry harness and side effects.
type Reconcile struct {
	BatchSize          string `env:"RECONCILE_BATCH_SIZE" envDefault:"50"`
	MinAge             string `env:"RECONCILE_MIN_AGE" envDefault:"2m"`
	ExpireAfter        string `env:"RECONCILE_EXPIRE_AFTER" envDefault:"60m"`
	LockTTL            string `env:"RECONCILE_LOCK_TTL" envDefault:"5m"`
	LockTimeout        string `env:"RECONCILE_LOCK_TIMEOUT" envDefault:"2s"`
	QueryTimeout       string `env:"RECONCILE_QUERY_TIMEOUT" envDefault:"10s"`
	RetryMaxAttempts   string `env:"RECONCILE_RETRY_MAX_ATTEMPTS" envDefault:"4"`
	RetryInitialDelay  string `env:"RECONCILE_RETRY_INITIAL_DELAY" envDefault:"250ms"`
	RetryMaxDelay      string `env:"RECONCILE_RETRY_MAX_DELAY" envDefault:"2s"`
	InvalidatePatterns string `env:"RECONCILE_INVALIDATE_PATTERNS" envDefault:"dashboard:*,reports:*"`
}

type ReconcileSettings struct {
	BatchSize          int
	MinAge             time.Duration
	ExpireAfter        time.Duration
	LockTTL            time.Duration
	LockTimeout        time.Duration
	QueryTimeout       time.Duration
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	InvalidatePatterns []string
}

// Settings parses the raw reconcile configuration.
func (r Reconcile) Settings() (ReconcileSettings, error) {
	var s ReconcileSettings
	var err error

	if s.BatchSize, err = positiveInt("RECONCILE_BATCH_SIZE", r.BatchSize); err != nil {
		return s, err
	}
	if s.RetryMaxAttempts, err = positiveInt("RECONCILE_RETRY_MAX_ATTEMPTS", r.RetryMaxAttempts); err != nil {
		return s, err
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"RECONCILE_MIN_AGE", r.MinAge, &s.MinAge},
		{"RECONCILE_EXPIRE_AFTER", r.ExpireAfter, &s.ExpireAfter},
		{"RECONCILE_LOCK_TTL", r.LockTTL, &s.LockTTL},
		{"RECONCILE_LOCK_TIMEOUT", r.LockTimeout, &s.LockTimeout},
		{"RECONCILE_QUERY_TIMEOUT", r.QueryTimeout, &s.QueryTimeout},
		{"RECONCILE_RETRY_INITIAL_DELAY", r.RetryInitialDelay, &s.RetryInitialDelay},
		{"RECONCILE_RETRY_MAX_DELAY", r.RetryMaxDelay, &s.RetryMaxDelay},
	}
	for _, d := range durations {
		if *d.dst, err = duration(d.key, d.raw); err != nil {
			return s, err
		}
	}

	if s.RetryMaxDelay <= 0 {
		return s, fmt.Errorf("RECONCILE_RETRY_MAX_DELAY must be greater than zero")
	}
	if s.LockTTL <= 0 {
		return s, fmt.Errorf("RECONCILE_LOCK_TTL must be greater than zero")
	}
	if s.ExpireAfter <= s.MinAge {
		return s, fmt.Errorf("RECONCILE_EXPIRE_AFTER (%s) must exceed RECONCILE_MIN_AGE (%s)", s.ExpireAfter, s.MinAge)
	}

	s.InvalidatePatterns = splitList(r.InvalidatePatterns)
	return s, nil
}

// Scheduler drives the optional in-process poll trigger.
type Scheduler struct {
	Enabled  string `env:"SCHEDULER_ENABLED" envDefault:"false"`
	Interval string `env:"SCHEDULER_INTERVAL" envDefault:"5m"`
	Gateways string `env:"SCHEDULER_GATEWAYS" envDefault:"bank,checkout"`
}

type SchedulerSettings struct {
	Enabled  bool
	Interval time.Duration
	Gateways []string
}

func (s Scheduler) Settings() (SchedulerSettings, error) {
	var out SchedulerSettings
	enabled, err := strconv.ParseBool(s.Enabled)
	if err != nil {
		return out, fmt.Errorf("invalid SCHEDULER_ENABLED %q: %w", s.Enabled, err)
	}
	out.Enabled = enabled
	if out.Interval, err = duration("SCHEDULER_INTERVAL", s.Interval); err != nil {
		return out, err
	}
	if out.Enabled && out.Interval <= 0 {
		return out, fmt.Errorf("SCHEDULER_INTERVAL must be greater than zero")
	}
	out.Gateways = splitList(s.Gateways)
	return out, nil
}

// BankGateway is gateway A: PIX charges and boletos.
type BankGateway struct {
	BaseURL      string `env:"BANK_BASE_URL" envDefault:"https://api.bank.example"`
	ClientID     string `env:"BANK_CLIENT_ID" envDefault:""`
	ClientSecret string `env:"BANK_CLIENT_SECRET" envDefault:""`
}

// CheckoutGateway is gateway B: card, PIX and boleto sales with numeric statuses.
type CheckoutGateway struct {
	BaseURL string `env:"CHECKOUT_BASE_URL" envDefault:"https://api.checkout.example"`
	APIKey  string `env:"CHECKOUT_API_KEY" envDefault:""`
}

// Load loads the configuration from environment variables
func Load() *Config {
	once.Do(func() {
		cfg = &Config{}
		populate(cfg)
	})

	return cfg
}

// populate fills every string field of every section from its env tag.
func populate(c *Config) {
	cfgType := reflect.TypeOf(*c)
	cfgValue := reflect.ValueOf(c).Elem()

	for i := 0; i < cfgType.NumField(); i++ {
		field := cfgType.Field(i)
		fieldValue := cfgValue.Field(i)
		for j := 0; j < field.Type.NumField(); j++ {
			subField := field.Type.Field(j)
			envVar := subField.Tag.Get("env")
			envDefault := subField.Tag.Get("envDefault")
			value := getEnv(envVar, envDefault)

			fieldValue.Field(j).SetString(value)
		}
	}
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}

func positiveInt(key, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", key)
	}
	return n, nil
}

func duration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
