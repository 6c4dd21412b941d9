package config

import (
	"fmt"
	"strings"
	"time"

	"hotel-booking-engine/utils"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	CorsOrigins []string

	DBDriver   string
	DBLogLevel string
	SeedDemo   bool

	GridUndoDepth  int
	GridSessionTTL time.Duration
}

// Load reads the process environment. Database credentials are resolved
// later by OpenStore.
func Load() (Config, error) {
	conf := Config{
		Port:           utils.EnvOrDefault("PORT", "8080"),
		CorsOrigins:    utils.SplitCSV(utils.EnvOrDefault("CORS_ORIGINS", "*")),
		DBDriver:       strings.ToLower(utils.EnvOrDefault("DB_DRIVER", DriverMySQL)),
		DBLogLevel:     strings.ToLower(utils.EnvOrDefault("DB_LOG_LEVEL", "warn")),
		SeedDemo:       utils.EnvBool("SEED_DEMO_DATA", false),
		GridUndoDepth:  utils.EnvInt("GRID_UNDO_DEPTH", 1),
		GridSessionTTL: utils.EnvDuration("GRID_SESSION_TTL", 30*time.Minute),
	}

	switch conf.DBDriver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", conf.DBDriver)
	}
	if conf.GridUndoDepth < 1 {
		return Config{}, fmt.Errorf("GRID_UNDO_DEPTH must be at least 1, got %d", conf.GridUndoDepth)
	}
	if len(conf.CorsOrigins) == 0 {
		conf.CorsOrigins = []string{"*"}
	}
	return conf, nil
}
