package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"stablecoin-ledger/internal/core/domain"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Operators  []OperatorConfig `mapstructure:"operators"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// LedgerConfig holds the engine-wide limits.
type LedgerConfig struct {
	MaxTransactionAmount  decimal.Decimal `mapstructure:"max_transaction_amount"`
	MinKycTier            domain.KycTier  `mapstructure:"min_kyc_tier"`
	ReserveRequirement    decimal.Decimal `mapstructure:"reserve_requirement"`
	RegulatoryAuthorities []string        `mapstructure:"regulatory_authorities"`
}

// ComplianceConfig holds the screening thresholds.
type ComplianceConfig struct {
	ReportingThreshold decimal.Decimal `mapstructure:"reporting_threshold"`
	HistoryWindow      time.Duration   `mapstructure:"history_window"`
	HistoryCap         int             `mapstructure:"history_cap"`
	StructuringCap     decimal.Decimal `mapstructure:"structuring_cap"`
	StructuringPolicy  string          `mapstructure:"structuring_policy"` // flag, reject
	RapidWindow        time.Duration   `mapstructure:"rapid_window"`
	RapidCount         int             `mapstructure:"rapid_count"`
	HighRiskAddresses  []string        `mapstructure:"high_risk_addresses"`
}

// OperatorConfig is a back-office login. PasswordHash is argon2id encoded.
type OperatorConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SCL_ (StableCoin Ledger).
// Nested keys use underscore: SCL_DATABASE_HOST, SCL_LEDGER_MAX_TRANSACTION_AMOUNT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "stablecoin_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "8h")
	v.SetDefault("jwt.issuer", "stablecoin-ledger")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("ledger.max_transaction_amount", "1000000")
	v.SetDefault("ledger.min_kyc_tier", string(domain.KycTierVerified))
	v.SetDefault("ledger.reserve_requirement", "1.0")
	v.SetDefault("ledger.regulatory_authorities", []string{"HKMA", "SFC"})
	v.SetDefault("compliance.reporting_threshold", "80000")
	v.SetDefault("compliance.history_window", "24h")
	v.SetDefault("compliance.history_cap", 500)
	v.SetDefault("compliance.structuring_cap", "500000")
	v.SetDefault("compliance.structuring_policy", "flag")
	v.SetDefault("compliance.rapid_window", "5m")
	v.SetDefault("compliance.rapid_count", 10)
	v.SetDefault("compliance.high_risk_addresses", []string{})

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SCL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SCL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToDecimalHook(),
		stringToKycTierHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the ledger cannot run with.
func (c *Config) Validate() error {
	if !c.Ledger.MaxTransactionAmount.IsPositive() {
		return errors.New("ledger.max_transaction_amount must be positive")
	}
	if !c.Ledger.ReserveRequirement.IsPositive() {
		return errors.New("ledger.reserve_requirement must be positive")
	}
	if c.Ledger.MinKycTier == domain.KycTierRejected {
		return errors.New("ledger.min_kyc_tier cannot be REJECTED")
	}
	switch c.Compliance.StructuringPolicy {
	case "flag", "reject":
	default:
		return fmt.Errorf("compliance.structuring_policy must be flag or reject, got %q", c.Compliance.StructuringPolicy)
	}
	if c.Compliance.RapidWindow > c.Compliance.HistoryWindow {
		return errors.New("compliance.rapid_window cannot exceed compliance.history_window")
	}
	for i, op := range c.Operators {
		if op.Username == "" || op.PasswordHash == "" {
			return fmt.Errorf("operators[%d] needs username and password_hash", i)
		}
	}
	return nil
}

func stringToDecimalHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		default:
			return data, nil
		}
	}
}

func stringToKycTierHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(domain.KycTier("")) {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return domain.ParseKycTier(s)
	}
}
