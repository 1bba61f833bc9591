package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Backend selects the store implementations: "postgres" for production,
// "memory" for local development without a database.
type DatabaseConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL     string `mapstructure:"url"     validate:"required_if=Backend postgres,omitempty,url"`
}

// SchedulerConfig contains the sweep scheduler settings.
type SchedulerConfig struct {
	// Timezone is the IANA location the midnight boundary is computed in.
	Timezone string `mapstructure:"timezone" validate:"required"`

	// SweepHour is the local hour of day the fleet sweep fires at.
	// Midnight by default.
	SweepHour int `mapstructure:"sweep_hour" validate:"gte=0,lte=23"`

	// ShutdownGraceSeconds bounds how long Stop waits for an in-flight
	// sweep before force-cancelling it.
	ShutdownGraceSeconds int `mapstructure:"shutdown_grace_seconds" validate:"required,gt=0"`

	// CatchUpOnStart runs one synchronous fleet sweep before the
	// schedule is armed, so resets missed during downtime are not lost.
	CatchUpOnStart bool `mapstructure:"catch_up_on_start"`
}
