package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/SversusN/tinyapp/internal/pkg/utils"
)

// DefaultSecretKey ключ подписи сессий, если не задан явно. Для продакшна задавать SECRET_KEY.
const DefaultSecretKey = "secret"

type Config struct {
	FlagAddress   string
	BaseURL       string
	SecretKey     string
	LogLevel      string
	TrustedSubnet string
	GRPCAddress   string
	EnableHTTPS   bool
	HTTPSDomain   string
	SeedDemoLinks bool
	HashCost      int
}

// NewConfig читает .env, флаги командной строки и переменные окружения
func NewConfig() (*Config, error) {
	//файла может и не быть
	_ = godotenv.Load()
	return Parse(os.Args[1:], os.LookupEnv)
}

// Parse значения по умолчанию, потом флаги, потом окружение
func Parse(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	c := &Config{
		FlagAddress: ":8080",
		BaseURL:     "http://localhost:8080",
		SecretKey:   DefaultSecretKey,
		LogLevel:    "info",
		HashCost:    bcrypt.DefaultCost,
	}
	fs := flag.NewFlagSet("tinyapp", flag.ContinueOnError)
	// указываем ссылку на переменную, имя флага, значение по умолчанию и описание
	fs.StringVar(&c.FlagAddress, "a", c.FlagAddress, "set server IP address")
	fs.StringVar(&c.BaseURL, "b", c.BaseURL, "base URL for short links")
	fs.StringVar(&c.SecretKey, "k", c.SecretKey, "session signing key")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	fs.StringVar(&c.TrustedSubnet, "t", c.TrustedSubnet, "trusted subnet (CIDR) for internal stats")
	fs.StringVar(&c.GRPCAddress, "g", c.GRPCAddress, "gRPC health server address, empty to disable")
	fs.BoolVar(&c.EnableHTTPS, "s", c.EnableHTTPS, "enable HTTPS with autocert")
	fs.BoolVar(&c.SeedDemoLinks, "seed", c.SeedDemoLinks, "seed demo links")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if port, ok := lookupEnv("PORT"); ok && port != "" {
		c.FlagAddress = fmt.Sprint(":", port)
	}
	if envRunAddr, ok := lookupEnv("SERVER_ADDRESS"); ok && envRunAddr != "" {
		c.FlagAddress = envRunAddr
	}
	if envBaseAddr, ok := lookupEnv("BASE_URL"); ok && envBaseAddr != "" {
		c.BaseURL = envBaseAddr
	}
	if secret, ok := lookupEnv("SECRET_KEY"); ok && secret != "" {
		c.SecretKey = secret
	}
	if level, ok := lookupEnv("LOG_LEVEL"); ok && level != "" {
		c.LogLevel = level
	}
	//может быть ""
	if subnet, ok := lookupEnv("TRUSTED_SUBNET"); ok {
		c.TrustedSubnet = subnet
	}
	if grpcAddr, ok := lookupEnv("GRPC_ADDRESS"); ok {
		c.GRPCAddress = grpcAddr
	}
	if domain, ok := lookupEnv("HTTPS_DOMAIN"); ok {
		c.HTTPSDomain = domain
	}
	var err error
	if c.EnableHTTPS, err = envBool(lookupEnv, "ENABLE_HTTPS", c.EnableHTTPS); err != nil {
		return nil, err
	}
	if c.SeedDemoLinks, err = envBool(lookupEnv, "SEED_DEMO_LINKS", c.SeedDemoLinks); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// Validate проверка согласованности настроек
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key must not be empty")
	}
	if _, err := utils.GetCIDR(c.TrustedSubnet); err != nil {
		return fmt.Errorf("bad trusted subnet: %w", err)
	}
	if c.EnableHTTPS && c.HTTPSDomain == "" {
		return errors.New("HTTPS_DOMAIN is required with HTTPS enabled")
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("bad hash cost %d", c.HashCost)
	}
	return nil
}

func envBool(lookupEnv func(string) (string, bool), key string, def bool) (bool, error) {
	v, ok := lookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("bad %s: %w", key, err)
	}
	return b, nil
}
