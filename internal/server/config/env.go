package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "SESSIONGATE_"

// parseEnv overlays values from the environment:
//
//	SESSIONGATE_HTTP_ADDR, SESSIONGATE_STORAGE, SESSIONGATE_DATABASE_DSN,
//	SESSIONGATE_REDIS_ADDR, SESSIONGATE_REDIS_PASSWORD, SESSIONGATE_REDIS_DB,
//	SESSIONGATE_SECRET_KEY, SESSIONGATE_ADMIN_SECRET,
//	SESSIONGATE_TOKEN_TTL (Go duration), SESSIONGATE_PASSWORD_HASHER,
//	SESSIONGATE_BCRYPT_COST, SESSIONGATE_LOG_LEVEL
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":       &config.EndpointAddrHTTP,
		"STORAGE":         &config.Storage,
		"DATABASE_DSN":    &config.DatabaseDSN,
		"REDIS_ADDR":      &config.RedisAddr,
		"REDIS_PASSWORD":  &config.RedisPassword,
		"SECRET_KEY":      &config.SecretKey,
		"ADMIN_SECRET":    &config.AdminSecret,
		"PASSWORD_HASHER": &config.PasswordHasher,
		"LOG_LEVEL":       &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":    &config.RedisDB,
		"BCRYPT_COST": &config.BcryptCost,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrConfig, EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sTOKEN_TTL: %v", ErrConfig, EnvPrefix, err)
		}
		config.TokenValidityDuration = d
	}

	return nil
}
