package common

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

// EnvPrefix is the prefix of every environment variable read by the services
const EnvPrefix = "KONDE"

// NewConfig returns viper instance which reads <name>.yaml (if present) and KONDE_* environment.
// Key "auth.db.dsn" is read from KONDE_AUTH_DB_DSN.
func NewConfig(name string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s config: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// DatabaseConfig is shared by services with own storage
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// SetDatabaseDefaults sets defaults for "<service>.db.*" keys
func SetDatabaseDefaults(v *viper.Viper, service string) {
	v.SetDefault(service+".db.driver", "mysql")
	v.SetDefault(service+".db.dsn", "")
}

// ReadDatabaseConfig reads "<service>.db.*" keys
func ReadDatabaseConfig(v *viper.Viper, service string) (DatabaseConfig, error) {
	dc := DatabaseConfig{
		Driver: strings.ToLower(v.GetString(service + ".db.driver")),
		DSN:    v.GetString(service + ".db.dsn"),
	}
	switch dc.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return dc, fmt.Errorf("unsupported database driver %q", dc.Driver)
	}
	if dc.DSN == "" {
		return dc, fmt.Errorf("missing database dsn in %s_%s_DB_DSN env", EnvPrefix, strings.ToUpper(service))
	}
	return dc, nil
}
