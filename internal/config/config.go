package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mysql    MysqlConfig    `mapstructure:"mysql"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	CORSOrigin  string `mapstructure:"cors_origin"`
	Environment string `mapstructure:"environment"`
}

type MysqlConfig struct {
	DSN string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type CheckoutConfig struct {
	// Flat surcharge added on top of the item subtotal of every order.
	ShippingCost float64 `mapstructure:"shipping_cost"`
}

// Load reads config.yaml from path, letting RECYCLE_* environment
// variables override any key (RECYCLE_MYSQL_DSN, RECYCLE_JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("RECYCLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults so a bare checkout still charges shipping and the server
	// comes up on a sane port.
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origin", "http://localhost:5173")
	viper.SetDefault("jwt.expiry_hours", 72)
	viper.SetDefault("checkout.shipping_cost", 50.00)

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, env vars can carry the whole config.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("WARNING: no config.yaml found, using environment variables and defaults")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
