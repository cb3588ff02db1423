package main

import (
	"errors"
	"fmt"
	"kondecoracao/common"
	"strings"
	"time"
)

type rewardsConfig struct {
	server       string
	devel        bool
	db           common.DatabaseConfig
	kafka        string
	authServer   string
	authTimeout  time.Duration
	location     *time.Location
	adminEmails  map[string]bool
	roleCacheTTL time.Duration
}

// loadConfig reads rewards.yaml and KONDE_* env, e.g. KONDE_REWARDS_ADMIN_EMAILS
func loadConfig() (*rewardsConfig, error) {
	v, err := common.NewConfig("rewards")
	if err != nil {
		return nil, err
	}
	v.SetDefault("devel", true)
	v.SetDefault("kafka", "")
	v.SetDefault("auth.server", "")
	v.SetDefault("auth.timeout", 5*time.Second)
	v.SetDefault("rewards.server", ":7001")
	v.SetDefault("rewards.timezone", "America/Sao_Paulo")
	v.SetDefault("rewards.admin.emails", "")
	v.SetDefault("rewards.role.cache.ttl", 5*time.Minute)
	common.SetDatabaseDefaults(v, "rewards")

	db, err := common.ReadDatabaseConfig(v, "rewards")
	if err != nil {
		return nil, err
	}
	authServer := v.GetString("auth.server")
	if authServer == "" {
		return nil, errors.New("missing address of Auth server in KONDE_AUTH_SERVER env")
	}
	location, err := time.LoadLocation(v.GetString("rewards.timezone"))
	if err != nil {
		return nil, fmt.Errorf("bad KONDE_REWARDS_TIMEZONE: %w", err)
	}

	return &rewardsConfig{
		server:       v.GetString("rewards.server"),
		devel:        v.GetBool("devel"),
		db:           db,
		kafka:        v.GetString("kafka"),
		authServer:   common.EnsureServerProtocol(authServer),
		authTimeout:  v.GetDuration("auth.timeout"),
		location:     location,
		adminEmails:  parseEmails(v.GetString("rewards.admin.emails")),
		roleCacheTTL: v.GetDuration("rewards.role.cache.ttl"),
	}, nil
}

// parseEmails splits comma or space separated list
func parseEmails(list string) map[string]bool {
	emails := map[string]bool{}
	for _, e := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
		emails[strings.ToLower(e)] = true
	}
	return emails
}
