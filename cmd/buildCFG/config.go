package buildCFG

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"elysion/internal/mailer"
	"elysion/internal/pass"
)

// Source is the part of the loaded configuration the builders read.
type Source interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
}

type ServerConfig struct {
	Port            string
	Mode            string
	ShutdownTimeout time.Duration
	AllowedOrigins  string
}

type DeskConfig struct {
	PassPrefix      string
	TTL             time.Duration
	CleanupInterval time.Duration
	QRSize          int
}

type RabbitConfig struct {
	Enabled  bool
	Url      string
	Exchange string
	Kind     string
	Queue    string
}

type smtpSecrets struct {
	Username string `env:"ELYSION_SMTP_USERNAME"`
	Password string `env:"ELYSION_SMTP_PASSWORD"`
}

func BuildServerConfig(cfg Source, log *zerolog.Logger) ServerConfig {
	sc := ServerConfig{
		Port:            cfg.GetString("server.port"),
		Mode:            cfg.GetString("server.mode"),
		ShutdownTimeout: cfg.GetDuration("server.shutdown_timeout"),
		AllowedOrigins:  cfg.GetString("server.allowed_origins"),
	}
	if sc.Port == "" {
		log.Warn().Msg("server.port not set, using 8080")
		sc.Port = "8080"
	}
	if sc.Mode == "" {
		sc.Mode = "release"
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = 10 * time.Second
	}
	return sc
}

func BuildDeskConfig(cfg Source) DeskConfig {
	dc := DeskConfig{
		PassPrefix:      cfg.GetString("desk.pass_prefix"),
		TTL:             cfg.GetDuration("desk.ttl"),
		CleanupInterval: cfg.GetDuration("desk.cleanup_interval"),
		QRSize:          cfg.GetInt("desk.qr_size"),
	}
	if dc.PassPrefix == "" {
		dc.PassPrefix = pass.DefaultPrefix
	}
	if dc.TTL <= 0 {
		dc.TTL = pass.DefaultDeskTTL
	}
	if dc.CleanupInterval <= 0 {
		dc.CleanupInterval = pass.DefaultCleanupInterval
	}
	if dc.QRSize <= 0 {
		dc.QRSize = pass.DefaultQRSize
	}
	return dc
}

func BuildRabbitConfig(cfg Source, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Enabled:  cfg.GetBool("rabbit.enabled"),
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Kind:     cfg.GetString("rabbit.kind"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if !rc.Enabled {
		log.Info().Msg("pass notifications disabled")
		return rc, nil
	}
	if rc.Url == "" || rc.Exchange == "" || rc.Queue == "" {
		return rc, errors.New("rabbit.url, rabbit.exchange and rabbit.queue are required when rabbit.enabled is set")
	}
	return rc, nil
}

// BuildMailerConfig reads the SMTP server from the config file and the
// credentials from the environment only.
func BuildMailerConfig(cfg Source) (mailer.Config, error) {
	mc := mailer.Config{
		Host: cfg.GetString("mailer.host"),
		Port: cfg.GetInt("mailer.port"),
		From: cfg.GetString("mailer.from"),
	}
	if mc.Port == 0 {
		mc.Port = 587
	}

	var secrets smtpSecrets
	if err := env.Parse(&secrets); err != nil {
		return mc, fmt.Errorf("parse smtp secrets: %w", err)
	}
	mc.Username = secrets.Username
	mc.Password = secrets.Password
	return mc, nil
}
