package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the certifier.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the operator console will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Merchant holds the merchant identity registered with the gateway.
	Merchant MerchantConfig `mapstructure:",squash"`

	// Gateway holds the gateway endpoint and key material.
	Gateway GatewayConfig `mapstructure:",squash"`

	// Polling holds the settlement polling budget.
	Polling PollingConfig `mapstructure:",squash"`

	// Cache holds the optional status cache settings.
	Cache CacheConfig `mapstructure:",squash"`

	// Proxy holds the optional egress proxy settings.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// MerchantConfig identifies the merchant towards the gateway.
type MerchantConfig struct {
	// HuifuID is the merchant number.
	HuifuID string `mapstructure:"HUIFU_ID" required:"true"`
	// SysID is the system number the keys were issued for.
	SysID string `mapstructure:"SYS_ID" required:"true"`
	// ProductID is the product number.
	ProductID string `mapstructure:"PRODUCT_ID" required:"true"`
	// UserID prefixes every generated request sequence id.
	UserID string `mapstructure:"USER_ID" required:"true"`
}

// GatewayConfig holds the gateway API location and key files.
type GatewayConfig struct {
	// URL is the base URL of the gateway API.
	URL string `mapstructure:"GATEWAY_URL" default:"https://api.huifu.com"`
	// TimeoutSeconds bounds a single gateway HTTP call.
	TimeoutSeconds int `mapstructure:"GATEWAY_TIMEOUT_SECONDS" default:"15"`
	// PrivateKeyFile is the merchant RSA private key (PEM or bare base64).
	PrivateKeyFile string `mapstructure:"PRIVATE_KEY_FILE" default:"keys/private_key.txt"`
	// PublicKeyFile is the gateway RSA public key (PEM or bare base64).
	PublicKeyFile string `mapstructure:"PUBLIC_KEY_FILE" default:"keys/public_key.txt"`
}

// Timeout returns the per-call timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// PollingConfig holds the defaults for waiting on settlement.
type PollingConfig struct {
	MaxWaitSeconds  int `mapstructure:"POLL_MAX_WAIT_SECONDS" default:"300"`
	IntervalSeconds int `mapstructure:"POLL_INTERVAL_SECONDS" default:"3"`
}

// CacheConfig configures the status cache used by the console.
type CacheConfig struct {
	// RedisURL enables the cache when set: redis://[:password@]host[:port][/database]
	RedisURL   string `mapstructure:"REDIS_URL"`
	TTLSeconds int    `mapstructure:"STATUS_CACHE_TTL_SECONDS" default:"2"`
}

// ProxyConfig routes gateway traffic through an authenticated HTTP proxy,
// typically the host whitelisted by the gateway.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED"`
	Hostname string `mapstructure:"PROXY_HOST"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files, environment variables and,
// when given, command line flags whose names match a config key
// (e.g. --log-level overrides LOG_LEVEL).
func Load(path string, flags ...*pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	keys := processTags(v, &config)

	for _, fs := range flags {
		if err := bindFlags(v, fs, keys); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged key to the environment, registers its
// default and returns the set of known keys.
func processTags(v *viper.Viper, config interface{}) map[string]struct{} {
	keys := make(map[string]struct{})

	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			for k := range processTags(v, val.Field(i).Addr().Interface()) {
				keys[k] = struct{}{}
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		keys[key] = struct{}{}
		_ = v.BindEnv(key)

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return keys
}

// bindFlags maps kebab-case flag names onto config keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]struct{}) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if _, ok := keys[key]; !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
