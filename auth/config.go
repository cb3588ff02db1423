package main

import (
	"errors"
	"kondecoracao/common"
	"time"
)

type authConfig struct {
	server       string
	devel        bool
	db           common.DatabaseConfig
	kafka        string
	clientID     string
	clientSecret string
	clientDomain string
	jwtKey       string
	tokenTTL     time.Duration
}

// loadConfig reads auth.yaml and KONDE_* env, e.g. KONDE_AUTH_JWT_KEY
func loadConfig() (*authConfig, error) {
	v, err := common.NewConfig("auth")
	if err != nil {
		return nil, err
	}
	v.SetDefault("devel", true)
	v.SetDefault("kafka", "")
	v.SetDefault("auth.server", ":7000")
	v.SetDefault("auth.client.id", "kondecoracao")
	v.SetDefault("auth.client.secret", "")
	v.SetDefault("auth.client.domain", "http://localhost:3000")
	v.SetDefault("auth.jwt.key", "")
	v.SetDefault("auth.token.ttl", 2*time.Hour)
	common.SetDatabaseDefaults(v, "auth")

	db, err := common.ReadDatabaseConfig(v, "auth")
	if err != nil {
		return nil, err
	}
	cfg := &authConfig{
		server:       v.GetString("auth.server"),
		devel:        v.GetBool("devel"),
		db:           db,
		kafka:        v.GetString("kafka"),
		clientID:     v.GetString("auth.client.id"),
		clientSecret: v.GetString("auth.client.secret"),
		clientDomain: v.GetString("auth.client.domain"),
		jwtKey:       v.GetString("auth.jwt.key"),
		tokenTTL:     v.GetDuration("auth.token.ttl"),
	}
	if cfg.clientSecret == "" {
		return nil, errors.New("missing oauth client secret in KONDE_AUTH_CLIENT_SECRET env")
	}
	if cfg.jwtKey == "" {
		return nil, errors.New("missing jwt signing key in KONDE_AUTH_JWT_KEY env")
	}
	return cfg, nil
}
