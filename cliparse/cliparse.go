package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DatabaseURL string

	// TokenSalt keys the one-way hashes for vote token secrets and client
	// IP addresses.
	TokenSalt string
	TokenTTL  time.Duration

	// CacheTTL bounds how long listing, results, and verification reads
	// are served from cache.
	CacheTTL time.Duration

	// Mail settings; leaving them empty disables email receipts.
	SMTPHost       string
	SMTPUser       string
	SMTPPass       string
	MailAddress    string
	MailSkipVerify bool
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var tokenTTL, cacheTTL string

	fs := flag.NewFlagSet("pollara", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSalt, "token-salt", "", "Vote token salt (prefer env)")

	fs.StringVar(&tokenTTL, "token-ttl", "", "Vote token lifetime (default 5m)")
	fs.StringVar(&cacheTTL, "cache-ttl", "", "Read cache lifetime (default 1m)")

	// Mail (optional; receipts are disabled when unset)
	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP host:port")
	fs.StringVar(&cfg.SMTPUser, "smtp-user", "", "SMTP user")
	fs.StringVar(&cfg.SMTPPass, "smtp-pass", "", "SMTP password (prefer env)")
	fs.StringVar(&cfg.MailAddress, "mail-address", "", "From address for receipts")
	fs.BoolVar(&cfg.MailSkipVerify, "mail-skip-verify", false, "Skip SMTP TLS verification")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3641 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if cfg.TokenSalt == "" {
		cfg.TokenSalt = os.Getenv("TOKEN_SALT")
	}
	if cfg.TokenSalt == "" {
		return Config{}, errors.New("TOKEN_SALT required")
	}

	if tokenTTL == "" {
		tokenTTL = os.Getenv("TOKEN_TTL")
	}
	if tokenTTL != "" {
		d, err := time.ParseDuration(tokenTTL)
		if err != nil || d <= 0 {
			return Config{}, errors.New("invalid TOKEN_TTL value")
		}
		cfg.TokenTTL = d
	} else {
		cfg.TokenTTL = 5 * time.Minute
	}

	if cacheTTL == "" {
		cacheTTL = os.Getenv("CACHE_TTL")
	}
	if cacheTTL != "" {
		d, err := time.ParseDuration(cacheTTL)
		if err != nil || d <= 0 {
			return Config{}, errors.New("invalid CACHE_TTL value")
		}
		cfg.CacheTTL = d
	} else {
		cfg.CacheTTL = time.Minute
	}

	if cfg.SMTPHost == "" {
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
	}
	if cfg.SMTPUser == "" {
		cfg.SMTPUser = os.Getenv("SMTP_USER")
	}
	if cfg.SMTPPass == "" {
		cfg.SMTPPass = os.Getenv("SMTP_PASS")
	}
	if cfg.MailAddress == "" {
		cfg.MailAddress = os.Getenv("MAIL_ADDRESS")
	}

	return cfg, nil
}
