package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"emoeval/internal/spec"
)

// Credentials carries secrets resolved once at startup.
type Credentials struct {
	Token string
	// Source names where the token was found, for diagnostics.
	Source string
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// ResolveCredentials reads the configured token from the process environment
// first and the dotenv file second. A missing token is fatal.
func ResolveCredentials(cfg spec.Config, root string, lookup LookupEnv) (Credentials, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := strings.TrimSpace(cfg.Credentials.TokenEnv)
	if name == "" {
		name = DefaultTokenEnv
	}
	if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
		return Credentials{Token: strings.TrimSpace(value), Source: "environment"}, nil
	}

	if dotenv := strings.TrimSpace(cfg.Credentials.DotEnv); dotenv != "" {
		path := ResolvePath(root, dotenv)
		values, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("read %s: %w", dotenv, err)
		}
		if value := strings.TrimSpace(values[name]); value != "" {
			return Credentials{Token: value, Source: dotenv}, nil
		}
	}
	return Credentials{}, fmt.Errorf("%s not found in environment or .env file", name)
}
