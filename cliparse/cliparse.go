// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

const (
	DefaultPort             = 3318
	DefaultMediaRoot        = "media"
	DefaultMediaURL         = "/media/"
	DefaultImageTokenLength = 16
	DefaultMaxImageBytes    = 10 << 20
	DefaultMaxImageSide     = 8192
	DefaultLoginRate        = 10
	defaultEnvFile          = ".env"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	PublicURL    string

	MediaBackend string // "local" or "s3"
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string

	ImageTokenLength   int
	MaxImageBytes      int64
	MaxImageSide       int
	LoginRatePerMinute int
	TrustedProxies     []netip.Prefix // peers whose X-Forwarded-For is believed

	LogLevel  string
	LogFormat string
}

// ImportConfig configures the ingredient importer command.
type ImportConfig struct {
	DatabaseURL  string
	DatabaseType string
	Delimiter    rune
	Format       string // "csv" or "json"
	Path         string
}

// ParseFlags validates flags and fills the rest from the environment.
// Flags given on the command line win over env variables.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, tokenLen, maxBytes, maxSide, loginRate, proxies string
	var port string

	fs := flag.NewFlagSet("recipe-box", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.StringVar(&port, "p", "", "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "Public base URL used in short links")

	// Media
	fs.StringVar(&cfg.MediaBackend, "media", "", "Media backend (local or s3)")
	fs.StringVar(&cfg.MediaRoot, "media-root", "", "Directory for local media")
	fs.StringVar(&cfg.MediaURL, "media-url", "", "URL prefix for media files")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", "", "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", "", "S3 access key (prefer env)")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", "", "S3 secret key (prefer env)")

	// Limits
	fs.StringVar(&tokenLen, "image-token-len", "", "Length of generated image names")
	fs.StringVar(&maxBytes, "max-image-bytes", "", "Largest accepted image in bytes")
	fs.StringVar(&maxSide, "max-image-side", "", "Largest accepted image width or height")
	fs.StringVar(&loginRate, "login-rate", "", "Login attempts per minute per IP (0 disables)")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set X-Forwarded-For")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fs.StringVar(&envFile, "env", "", "Path to a .env file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port, err = intSetting(port, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}

	cfg.DatabaseURL = stringSetting(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = stringSetting(cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	cfg.PublicURL = strings.TrimRight(
		stringSetting(cfg.PublicURL, "PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	cfg.MediaBackend = stringSetting(cfg.MediaBackend, "MEDIA_BACKEND", "local")
	cfg.MediaRoot = stringSetting(cfg.MediaRoot, "MEDIA_ROOT", DefaultMediaRoot)
	cfg.MediaURL = stringSetting(cfg.MediaURL, "MEDIA_URL", DefaultMediaURL)
	if !strings.HasSuffix(cfg.MediaURL, "/") {
		cfg.MediaURL += "/"
	}
	cfg.S3Bucket = stringSetting(cfg.S3Bucket, "S3_BUCKET", "")
	cfg.S3Region = stringSetting(cfg.S3Region, "S3_REGION", "")
	cfg.S3Endpoint = stringSetting(cfg.S3Endpoint, "S3_ENDPOINT", "")
	cfg.S3AccessKey = stringSetting(cfg.S3AccessKey, "S3_ACCESS_KEY", "")
	cfg.S3SecretKey = stringSetting(cfg.S3SecretKey, "S3_SECRET_KEY", "")

	switch cfg.MediaBackend {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return Config{}, errors.New("S3_BUCKET and S3_REGION required for s3 media backend")
		}
	default:
		return Config{}, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}

	if cfg.ImageTokenLength, err = intSetting(tokenLen, "IMAGE_TOKEN_LENGTH", DefaultImageTokenLength); err != nil {
		return Config{}, err
	}
	if cfg.ImageTokenLength < 8 || cfg.ImageTokenLength > 32 {
		return Config{}, errors.New("image token length must be between 8 and 32")
	}
	bytesLimit, err := intSetting(maxBytes, "MAX_IMAGE_BYTES", DefaultMaxImageBytes)
	if err != nil {
		return Config{}, err
	}
	if bytesLimit <= 0 {
		return Config{}, errors.New("max image bytes must be positive")
	}
	cfg.MaxImageBytes = int64(bytesLimit)
	if cfg.MaxImageSide, err = intSetting(maxSide, "MAX_IMAGE_SIDE", DefaultMaxImageSide); err != nil {
		return Config{}, err
	}
	if cfg.MaxImageSide <= 0 {
		return Config{}, errors.New("max image side must be positive")
	}
	if cfg.LoginRatePerMinute, err = intSetting(loginRate, "LOGIN_RATE_PER_MINUTE", DefaultLoginRate); err != nil {
		return Config{}, err
	}
	if cfg.LoginRatePerMinute < 0 {
		return Config{}, errors.New("login rate must not be negative")
	}
	if cfg.TrustedProxies, err = parseTrustedProxies(stringSetting(proxies, "TRUSTED_PROXIES", "")); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = stringSetting(cfg.LogLevel, "LOG_LEVEL", "info")
	cfg.LogFormat = stringSetting(cfg.LogFormat, "LOG_FORMAT", "text")

	return cfg, nil
}

// ParseImportFlags parses the importer command line:
//
//	importer [-d url] [-t type] [-delimiter ,] [-format csv|json] <file>
func ParseImportFlags(args []string) (ImportConfig, error) {
	var cfg ImportConfig
	var delimiter, envFile string

	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	fs.StringVar(&cfg.Format, "format", "", "Input format (csv or json, default from extension)")
	fs.StringVar(&envFile, "env", "", "Path to a .env file")

	if err := fs.Parse(args); err != nil {
		return ImportConfig{}, err
	}
	if err := loadEnvFile(envFile); err != nil {
		return ImportConfig{}, err
	}

	if fs.NArg() != 1 {
		return ImportConfig{}, errors.New("exactly one input file required")
	}
	cfg.Path = fs.Arg(0)

	cfg.DatabaseURL = stringSetting(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return ImportConfig{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = stringSetting(cfg.DatabaseType, "DATABASE_TYPE", "sqlite")

	r, size := utf8.DecodeRuneInString(delimiter)
	if r == utf8.RuneError || size != len(delimiter) {
		return ImportConfig{}, errors.New("delimiter must be a single character")
	}
	cfg.Delimiter = r

	if cfg.Format == "" {
		if strings.EqualFold(filepath.Ext(cfg.Path), ".json") {
			cfg.Format = "json"
		} else {
			cfg.Format = "csv"
		}
	}
	if cfg.Format != "csv" && cfg.Format != "json" {
		return ImportConfig{}, fmt.Errorf("unsupported format %q", cfg.Format)
	}

	return cfg, nil
}

// loadEnvFile loads path, or ./.env when path is empty. Existing env
// variables are kept. Only an explicitly named file must exist.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func stringSetting(flagVal, env, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func intSetting(flagVal, env string, def int) (int, error) {
	raw := flagVal
	if raw == "" {
		raw = os.Getenv(env)
	}
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", env, raw)
	}
	return n, nil
}

// parseTrustedProxies accepts a comma-separated list of addresses and CIDR
// ranges. A bare address becomes a single-host prefix.
func parseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
