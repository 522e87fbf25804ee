package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads .env and the process environment into viper. Environment
// variables win over the file.
func Load(path string) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.BindEnv("store.bolt_path", "BOLT_PATH")
	viper.BindEnv("store.retry_attempts", "STORE_RETRY_ATTEMPTS")
	viper.BindEnv("store.retry_backoff", "STORE_RETRY_BACKOFF")

	viper.BindEnv("cashier.default_timezone", "CASHIER_DEFAULT_TIMEZONE")
	viper.BindEnv("cashier.tenant_timezones", "CASHIER_TENANT_TIMEZONES")
	viper.BindEnv("cashier.store_timeout", "CASHIER_STORE_TIMEOUT")
	viper.BindEnv("cashier.allow_stale_postings", "CASHIER_ALLOW_STALE_POSTINGS")
	viper.BindEnv("cashier.summary_cache_ttl", "CASHIER_SUMMARY_CACHE_TTL")

	viper.BindEnv("server.port", "PORT")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}
}

// CashierConfig holds the settings of the daily cash register subsystem.
type CashierConfig struct {
	DefaultTimezone    string
	TenantTimezones    map[string]string
	StoreTimeout       time.Duration
	AllowStalePostings bool
	SummaryCacheTTL    time.Duration
	StoreDriver        string
	BoltPath           string
	RetryAttempts      int
	RetryBackoff       time.Duration

	locations map[string]*time.Location
	fallback  *time.Location
}

func LoadCashierConfig() *CashierConfig {
	viper.SetDefault("cashier.default_timezone", "UTC")
	viper.SetDefault("cashier.tenant_timezones", "")
	viper.SetDefault("cashier.store_timeout", 5*time.Second)
	viper.SetDefault("cashier.allow_stale_postings", false)
	viper.SetDefault("cashier.summary_cache_ttl", 10*time.Minute)
	viper.SetDefault("store.driver", "postgres")
	viper.SetDefault("store.bolt_path", "cashier.db")
	viper.SetDefault("store.retry_attempts", 3)
	viper.SetDefault("store.retry_backoff", 25*time.Millisecond)

	cfg := &CashierConfig{
		DefaultTimezone:    viper.GetString("cashier.default_timezone"),
		TenantTimezones:    ParseTenantTimezones(viper.GetString("cashier.tenant_timezones")),
		StoreTimeout:       viper.GetDuration("cashier.store_timeout"),
		AllowStalePostings: viper.GetBool("cashier.allow_stale_postings"),
		SummaryCacheTTL:    viper.GetDuration("cashier.summary_cache_ttl"),
		StoreDriver:        strings.ToLower(viper.GetString("store.driver")),
		BoltPath:           viper.GetString("store.bolt_path"),
		RetryAttempts:      viper.GetInt("store.retry_attempts"),
		RetryBackoff:       viper.GetDuration("store.retry_backoff"),
	}
	cfg.resolveLocations()
	return cfg
}

// ParseTenantTimezones reads "gym1=America/Lima,gym2=Europe/Madrid".
// Malformed pairs are skipped.
func ParseTenantTimezones(raw string) map[string]string {
	zones := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		tenant, zone, ok := strings.Cut(strings.TrimSpace(pair), "=")
		tenant, zone = strings.TrimSpace(tenant), strings.TrimSpace(zone)
		if !ok || tenant == "" || zone == "" {
			continue
		}
		zones[tenant] = zone
	}
	return zones
}

func (c *CashierConfig) resolveLocations() {
	c.fallback = time.UTC
	if loc, err := time.LoadLocation(c.DefaultTimezone); err == nil {
		c.fallback = loc
	} else {
		log.Printf("[CONFIG] invalid default timezone %q, using UTC: %v", c.DefaultTimezone, err)
	}

	c.locations = make(map[string]*time.Location, len(c.TenantTimezones))
	for tenant, zone := range c.TenantTimezones {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			log.Printf("[CONFIG] invalid timezone %q for tenant %s, using default: %v", zone, tenant, err)
			continue
		}
		c.locations[tenant] = loc
	}
}

// Location returns the zone in which the tenant's business day is counted.
func (c *CashierConfig) Location(tenantID string) *time.Location {
	if c.locations == nil {
		c.resolveLocations()
	}
	if loc, ok := c.locations[tenantID]; ok {
		return loc
	}
	return c.fallback
}
