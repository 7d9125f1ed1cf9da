// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
// It is loaded once at startup and passed to the components that need it.
type Config struct {
	DBDriver             string        `mapstructure:"DB_DRIVER"`
	DBSource             string        `mapstructure:"DB_SOURCE"`
	MigrationURL         string        `mapstructure:"MIGRATION_URL"`
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	Environement         string        `mapstructure:"GO_ENV"`
	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	JWTAlgorithm         string        `mapstructure:"JWT_ALGORITHM"`
	JWTIssuer            string        `mapstructure:"JWT_ISSUER"`
	JWTAudience          string        `mapstructure:"JWT_AUDIENCE"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	TokenLeeway          time.Duration `mapstructure:"TOKEN_LEEWAY"`
	MaxLoginAttempts     int           `mapstructure:"MAX_LOGIN_ATTEMPTS"`
	LoginAttemptWindow   time.Duration `mapstructure:"LOGIN_ATTEMPT_WINDOW"`
	RateLimitRequests    int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitPeriod      time.Duration `mapstructure:"RATE_LIMIT_PERIOD"`
	RedisAddress         string        `mapstructure:"REDIS_ADDRESS"`
	CORSAllowedOrigins   string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	TrustedProxies       string        `mapstructure:"TRUSTED_PROXIES"`
	MinTransactionAmount string        `mapstructure:"MIN_TRANSACTION_AMOUNT"`
	MaxAccountBalance    string        `mapstructure:"MAX_ACCOUNT_BALANCE"`
}

var defaults = map[string]any{
	"DB_DRIVER":              "postgres",
	"SERVER_ADDRESS":         "0.0.0.0:8080",
	"GO_ENV":                 "production",
	"JWT_ALGORITHM":          "HS256",
	"JWT_ISSUER":             "desafio-bank.com.br",
	"JWT_AUDIENCE":           "desafio-bank",
	"ACCESS_TOKEN_DURATION":  15 * time.Minute,
	"REFRESH_TOKEN_DURATION": 7 * 24 * time.Hour,
	"TOKEN_LEEWAY":           10 * time.Second,
	"MAX_LOGIN_ATTEMPTS":     5,
	"LOGIN_ATTEMPT_WINDOW":   time.Hour,
	"RATE_LIMIT_REQUESTS":    100,
	"RATE_LIMIT_PERIOD":      time.Minute,
	"CORS_ALLOWED_ORIGINS":   "*",
	"TRUSTED_PROXIES":        "",
	"MIN_TRANSACTION_AMOUNT": domain.DefaultMinTransactionAmount.String(),
	"MAX_ACCOUNT_BALANCE":    domain.DefaultMaxAccountBalance.String(),
}

// Load read configuration from file or environment variables.
//
// The app.env file in path is optional, environment variables always take precedence.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	// AutomaticEnv only affects keys viper already knows about.
	for _, key := range []string{"DB_SOURCE", "MIGRATION_URL", "JWT_SECRET", "REDIS_ADDRESS"} {
		if err := v.BindEnv(key); err != nil {
			return c, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// Validate checks that the configuration can be used to start the application.
func (c Config) Validate() error {
	if c.DBSource == "" {
		return errors.New("DB_SOURCE is required")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch strings.ToUpper(c.JWTAlgorithm) {
	case "HS256", "HS384", "HS512", "PASETO":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}

	if c.AccessTokenDuration <= 0 || c.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}

	if c.RateLimitRequests <= 0 || c.RateLimitPeriod <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_PERIOD must be positive")
	}

	if c.MaxLoginAttempts <= 0 || c.LoginAttemptWindow <= 0 {
		return errors.New("MAX_LOGIN_ATTEMPTS and LOGIN_ATTEMPT_WINDOW must be positive")
	}

	if _, err := c.LedgerPolicy(); err != nil {
		return err
	}

	return nil
}

// LedgerPolicy returns the business limits for the ledger.
func (c Config) LedgerPolicy() (domain.LedgerPolicy, error) {
	var p domain.LedgerPolicy

	minAmount, err := decimal.NewFromString(c.MinTransactionAmount)
	if err != nil {
		return p, fmt.Errorf("invalid MIN_TRANSACTION_AMOUNT: %w", err)
	}

	maxBalance, err := decimal.NewFromString(c.MaxAccountBalance)
	if err != nil {
		return p, fmt.Errorf("invalid MAX_ACCOUNT_BALANCE: %w", err)
	}

	if !minAmount.IsPositive() {
		return p, errors.New("MIN_TRANSACTION_AMOUNT must be positive")
	}

	if maxBalance.LessThan(minAmount) {
		return p, errors.New("MAX_ACCOUNT_BALANCE must not be lower than MIN_TRANSACTION_AMOUNT")
	}

	p.MinTransactionAmount = minAmount
	p.MaxAccountBalance = maxBalance

	return p, nil
}

// AllowedOrigins returns the list of CORS origins.
func (c Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList returns the proxy addresses or CIDRs allowed to set client IP headers.
// Nil means no proxy is trusted and the client IP is the peer address.
func (c Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var items []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
