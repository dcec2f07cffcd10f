package config

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mhartmann/leadcrm/internal/db"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	MigrationsPath string
}

// SMTPConfig holds the SMTP relay backend settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// MailerConfig selects and configures the outbound mail relay.
type MailerConfig struct {
	Method       string // "resend" or "smtp"
	ResendAPIKey string
	SMTP         SMTPConfig
	FromEmail    string
	FromName     string
}

// Config is the application configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Mailer   MailerConfig
}

// Default returns the built-in configuration used when no config file
// or environment overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			MigrationsPath: "./migrations",
		},
		Database: db.DefaultConfig(),
		Mailer: MailerConfig{
			Method: "resend",
			SMTP:   SMTPConfig{Port: 587},
		},
	}
}

// Load reads config.yaml from the given path, allowing environment
// overrides (LEADCRM_DATABASE_HOST and so on). Missing files are not
// an error; defaults apply.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("LEADCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("mailer.method")
	v.BindEnv("mailer.resend_api_key")
	v.BindEnv("mailer.smtp.host")
	v.BindEnv("mailer.smtp.port")
	v.BindEnv("mailer.smtp.user")
	v.BindEnv("mailer.smtp.password")
	v.BindEnv("mailer.from_email")
	v.BindEnv("mailer.from_name")

	if err := v.ReadInConfig(); err != nil {
		logrus.Info("no config.yaml found, using defaults and env vars")
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Info("loaded configuration")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.migrations_path") {
		cfg.Server.MigrationsPath = v.GetString("server.migrations_path")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("mailer.method") {
		cfg.Mailer.Method = v.GetString("mailer.method")
	}
	if v.IsSet("mailer.resend_api_key") {
		cfg.Mailer.ResendAPIKey = v.GetString("mailer.resend_api_key")
	}
	if v.IsSet("mailer.smtp.host") {
		cfg.Mailer.SMTP.Host = v.GetString("mailer.smtp.host")
	}
	if v.IsSet("mailer.smtp.port") {
		cfg.Mailer.SMTP.Port = v.GetInt("mailer.smtp.port")
	}
	if v.IsSet("mailer.smtp.user") {
		cfg.Mailer.SMTP.User = v.GetString("mailer.smtp.user")
	}
	if v.IsSet("mailer.smtp.password") {
		cfg.Mailer.SMTP.Password = v.GetString("mailer.smtp.password")
	}
	if v.IsSet("mailer.from_email") {
		cfg.Mailer.FromEmail = v.GetString("mailer.from_email")
	}
	if v.IsSet("mailer.from_name") {
		cfg.Mailer.FromName = v.GetString("mailer.from_name")
	}

	return cfg, nil
}
