package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Defaults DefaultsConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string
}

type DefaultsConfig struct {
	OwnerEmail    string `mapstructure:"owner_email"`
	OwnerPassword string `mapstructure:"owner_password"`
	BusinessName  string `mapstructure:"business_name"`
	InvoicePrefix string `mapstructure:"invoice_prefix"`
	ReceiptPrefix string `mapstructure:"receipt_prefix"`
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, falling back to environment variables")
	}

	// Enable reading from OS environment variables as fallback/override
	viper.AutomaticEnv()

	// Explicitly bind environment variables for robustness
	viper.BindEnv("SERVER_PORT", "PORT") // Fallback to PORT if SERVER_PORT is missing
	viper.BindEnv("DATABASE_URL")

	AppConfig = &Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			Env:                viper.GetString("SERVER_ENV"),
			JWTSecret:          viper.GetString("JWT_SECRET"),
			JWTExpirationHours: viper.GetInt("JWT_EXPIRATION_HOURS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			URL:      viper.GetString("DATABASE_URL"),
		},
		Defaults: DefaultsConfig{
			OwnerEmail:    viper.GetString("OWNER_EMAIL"),
			OwnerPassword: viper.GetString("OWNER_PASSWORD"),
			BusinessName:  viper.GetString("BUSINESS_NAME"),
			InvoicePrefix: viper.GetString("INVOICE_PREFIX"),
			ReceiptPrefix: viper.GetString("RECEIPT_PREFIX"),
		},
	}

	if AppConfig.Server.Port == "" {
		AppConfig.Server.Port = "8080"
	}
	if AppConfig.Server.JWTExpirationHours == 0 {
		AppConfig.Server.JWTExpirationHours = 72
	}
	if AppConfig.Defaults.InvoicePrefix == "" {
		AppConfig.Defaults.InvoicePrefix = "INV"
	}
	if AppConfig.Defaults.ReceiptPrefix == "" {
		AppConfig.Defaults.ReceiptPrefix = "RCP"
	}

	log.Info().
		Str("port", AppConfig.Server.Port).
		Str("env", AppConfig.Server.Env).
		Bool("jwt_secret_set", AppConfig.Server.JWTSecret != "").
		Bool("database_url_set", AppConfig.Database.URL != "").
		Str("business_name", AppConfig.Defaults.BusinessName).
		Msg("Configuration loaded")
}
