package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Market          MarketConfig         `mapstructure:"market"`
}

type ServiceConfig struct {
	Port string `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	// InMemory switches the ledger store to the in-process implementation.
	// Useful for local runs and demos without a Postgres instance.
	InMemory bool `mapstructure:"in_memory"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	Quotes QuotesConfig `mapstructure:"quotes"`
}

type QuotesConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	// CacheTTLSeconds bounds how long a fetched quote may be served from the
	// redis cache before hitting the upstream source again.
	CacheTTLSeconds int `mapstructure:"cacheTtlSeconds"`
}

type MarketConfig struct {
	// RefreshCron is a robfig/cron spec for the periodic price refresh.
	RefreshCron string `mapstructure:"refreshCron"`
	// SeedTickers are inserted into the asset catalog at startup when missing.
	SeedTickers []string `mapstructure:"seedTickers"`
	// InitialCash is the cash balance granted to newly registered users.
	InitialCash string `mapstructure:"initialCash"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
