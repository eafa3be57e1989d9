package config

import (
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string        `validate:"required,hostname_port"`
	DBUrl       string        `validate:"required"`
	TokenSecret string        `validate:"required"`
	TokenTTL    time.Duration `validate:"gt=0"`
	DraftTTL    time.Duration `validate:"gt=0"`
	PublicDir   string
	PrivateDir  string
	Debug       bool
}

// ParseFlags reads the command line. Every flag defaults to an INTAKE_* environment
// variable, optionally loaded from a .env file in the working directory.
func ParseFlags() (cfg Config, err error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("intake", flag.ExitOnError)
	cfg, err = parse(fs, os.Args[1:])
	return
}

func parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	var host string
	fs.StringVar(&host, "host", env("INTAKE_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("INTAKE_PORT", 80), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("INTAKE_DB_URL", "intake.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("INTAKE_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("INTAKE_TOKEN_TTL", 120), "token TTL in seconds")
	var draftTTL uint
	fs.UintVar(&draftTTL, "draft-ttl", envUint("INTAKE_DRAFT_TTL", 3600), "idle draft TTL in seconds")
	fs.StringVar(&cfg.PublicDir, "public-dir", env("INTAKE_PUBLIC_DIR", "public"), "directory served at /")
	fs.StringVar(&cfg.PrivateDir, "private-dir", env("INTAKE_PRIVATE_DIR", "private"), "directory served at /admin")
	fs.BoolVar(&cfg.Debug, "debug", env("INTAKE_DEBUG", "") == "true", "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.DraftTTL = time.Duration(draftTTL) * time.Second

	err = validator.New().Struct(cfg)
	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}
