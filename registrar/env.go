package registrar

import (
	"context"
	"strconv"
	"time"

	"github.com/drophub/airdrop/lib/env"
)

const (
	// EnvCfgHost is the env config key for the registrar host.
	EnvCfgHost env.ConfigKey = "host"
	// EnvCfgPort is the port on which to run the registrar.
	EnvCfgPort env.ConfigKey = "port"
	// EnvCfgKeyFile is the production certificate key file.
	EnvCfgKeyFile env.ConfigKey = "key_file"
	// EnvCfgCrtFile is the production certificate file.
	EnvCfgCrtFile env.ConfigKey = "crt_file"
	// EnvCfgCORSOrigin is the origin allowed to call the API from a browser.
	EnvCfgCORSOrigin env.ConfigKey = "cors_origin"
	// EnvCfgTTL is the maximal acceptable age in seconds of the timestamp
	// embedded in signed messages.
	EnvCfgTTL env.ConfigKey = "ttl"
	// EnvCfgChain is the default chain label for registrations.
	EnvCfgChain env.ConfigKey = "chain"
)

// GetHost retrieves the current registrar host from the given context.
func GetHost(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgHost]
}

// GetPort retrieves the current registrar port from the given context.
func GetPort(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgPort]
}

// GetKeyFile retrieves the production certificate key file.
func GetKeyFile(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgKeyFile]
}

// GetCrtFile retrieves the production certificate file.
func GetCrtFile(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgCrtFile]
}

// GetCORSOrigin retrieves the allowed CORS origin, defaulting to `*`.
func GetCORSOrigin(
	ctx context.Context,
) string {
	origin := env.Get(ctx).Config[EnvCfgCORSOrigin]
	if origin == "" {
		return "*"
	}
	return origin
}

// GetTTL retrieves the timestamp TTL, defaulting to DefaultTTL seconds.
func GetTTL(
	ctx context.Context,
) time.Duration {
	ttl := env.Get(ctx).Config[EnvCfgTTL]
	if ttl != "" {
		if s, err := strconv.ParseInt(ttl, 10, 64); err == nil && s > 0 {
			return time.Duration(s) * time.Second
		}
	}
	return time.Duration(DefaultTTL) * time.Second
}

// GetChain retrieves the default chain label, defaulting to DefaultChain.
func GetChain(
	ctx context.Context,
) string {
	chain := env.Get(ctx).Config[EnvCfgChain]
	if chain == "" {
		return DefaultChain
	}
	return chain
}
