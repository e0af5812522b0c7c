// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
//
// Precedence, lowest first: built-in defaults, flags, config file,
// environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Signup modes.
const (
	SignupAdmin = "admin"
	SignupOpen  = "open"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string
	// BasePath is the global route prefix.
	BasePath string
	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string
	// Config is the path to the config file.
	Config string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// Environment is "production" or "development".
	Environment string

	// JWTSecret signs bearer tokens.
	JWTSecret string
	// JWTTTL is the bearer token lifetime.
	JWTTTL time.Duration
	// SignupMode is SignupAdmin or SignupOpen.
	SignupMode string
	// AdminEmail and AdminPassword seed an admin account at startup when set.
	AdminEmail    string
	AdminPassword string

	// RedisURL selects the shared revocation store when set.
	RedisURL string
	// BlacklistSweepInterval is how often the in-memory store drops expired entries.
	BlacklistSweepInterval time.Duration

	// NoReplyEmail and NoReplyPasscode are the default contact mail sender.
	NoReplyEmail    string
	NoReplyPasscode string
	// NoReplyEmailSecondary and NoReplyPasscodeSecondary are tried when the
	// primary default is empty.
	NoReplyEmailSecondary    string
	NoReplyPasscodeSecondary string
	// MailService picks an SMTP host preset (gmail, outlook, yahoo, zoho).
	MailService string
	// MailHost and MailPort override the preset.
	MailHost string
	MailPort int
	// TemplateDir overrides the embedded email templates.
	TemplateDir string
	// PersistContactOnSendFailure stores contact messages even if a send fails.
	PersistContactOnSendFailure bool

	// RateLimitLogin and RateLimitContact use the "<n>-<S|M|H|D>" format.
	RateLimitLogin   string
	RateLimitContact string
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string
}

var defaults = map[string]any{
	"server_address":                    ":3001",
	"base_path":                         "/portfolio-api",
	"database_dsn":                      "",
	"log_level":                         "info",
	"environment":                       "production",
	"jwt_secret":                        "",
	"jwt_ttl":                           15 * time.Minute,
	"signup_mode":                       SignupAdmin,
	"admin_email":                       "",
	"admin_password":                    "",
	"redis_url":                         "",
	"blacklist_sweep_interval":          time.Minute,
	"no_reply_email_address":            "",
	"no_reply_email_passcode":           "",
	"no_reply_email_address_secondary":  "",
	"no_reply_email_passcode_secondary": "",
	"mail_service":                      "gmail",
	"mail_host":                         "",
	"mail_port":                         0,
	"template_dir":                      "",
	"contact_persist_on_send_failure":   false,
	"rate_limit_login":                  "10-M",
	"rate_limit_contact":                "5-M",
	"cors_origins":                      "*",
	"tls_cert":                          "",
	"tls_key":                           "",
}

// Load builds Options from args, the config file and the environment.
func Load(args []string) (*Options, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var (
		addr, dsn, configPath, level, redisURL string
	)
	fs.StringVar(&addr, "a", defaults["server_address"].(string), "run on ip:port server")
	fs.StringVar(&dsn, "d", "", "db address")
	fs.StringVar(&configPath, "config", "config.json", "path to config file")
	fs.StringVar(&configPath, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&level, "l", defaults["log_level"].(string), "log level")
	fs.StringVar(&redisURL, "r", "", "redis url for the token blacklist")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// Flags sit above defaults and below file and env.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			v.SetDefault("server_address", addr)
		case "d":
			v.SetDefault("database_dsn", dsn)
		case "l":
			v.SetDefault("log_level", level)
		case "r":
			v.SetDefault("redis_url", redisURL)
		}
	})

	// Override flags with environment variables if set
	if p := os.Getenv("CONFIG"); p != "" {
		configPath = p
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}
	v.AutomaticEnv()

	opts := &Options{
		Address:                     v.GetString("server_address"),
		BasePath:                    v.GetString("base_path"),
		DatabaseDSN:                 v.GetString("database_dsn"),
		Config:                      configPath,
		LogLevel:                    v.GetString("log_level"),
		Environment:                 v.GetString("environment"),
		JWTSecret:                   v.GetString("jwt_secret"),
		JWTTTL:                      v.GetDuration("jwt_ttl"),
		SignupMode:                  strings.ToLower(v.GetString("signup_mode")),
		AdminEmail:                  v.GetString("admin_email"),
		AdminPassword:               v.GetString("admin_password"),
		RedisURL:                    v.GetString("redis_url"),
		BlacklistSweepInterval:      v.GetDuration("blacklist_sweep_interval"),
		NoReplyEmail:                v.GetString("no_reply_email_address"),
		NoReplyPasscode:             v.GetString("no_reply_email_passcode"),
		NoReplyEmailSecondary:       v.GetString("no_reply_email_address_secondary"),
		NoReplyPasscodeSecondary:    v.GetString("no_reply_email_passcode_secondary"),
		MailService:                 v.GetString("mail_service"),
		MailHost:                    v.GetString("mail_host"),
		MailPort:                    v.GetInt("mail_port"),
		TemplateDir:                 v.GetString("template_dir"),
		PersistContactOnSendFailure: v.GetBool("contact_persist_on_send_failure"),
		RateLimitLogin:              v.GetString("rate_limit_login"),
		RateLimitContact:            v.GetString("rate_limit_contact"),
		CORSOrigins:                 splitList(v.GetString("cors_origins")),
		TLSCert:                     v.GetString("tls_cert"),
		TLSKey:                      v.GetString("tls_key"),
	}
	return opts, nil
}

// Validate reports the first missing or inconsistent setting.
func (o *Options) Validate() error {
	switch {
	case o.DatabaseDSN == "":
		return errors.New("database dsn is required")
	case o.JWTSecret == "":
		return errors.New("jwt secret is required")
	case o.JWTTTL <= 0:
		return fmt.Errorf("jwt ttl must be positive, got %s", o.JWTTTL)
	case o.SignupMode != SignupAdmin && o.SignupMode != SignupOpen:
		return fmt.Errorf("unknown signup mode %q", o.SignupMode)
	case (o.TLSCert == "") != (o.TLSKey == ""):
		return errors.New("tls cert and key must be set together")
	case o.BlacklistSweepInterval <= 0:
		return fmt.Errorf("blacklist sweep interval must be positive, got %s", o.BlacklistSweepInterval)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (o *Options) IsDevelopment() bool {
	return strings.EqualFold(o.Environment, "development")
}

// Parse loads and validates the configuration from the process arguments
// and environment, exiting on error.
func Parse() *Options {
	opts, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
