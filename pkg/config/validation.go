package config

import (
	"fmt"
	"slices"
	"strings"
)

// validate validates the configuration
func validate(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateSimulation(&config.Simulation); err != nil {
		return fmt.Errorf("simulation config: %w", err)
	}

	if err := validateWebSocket(&config.WebSocket); err != nil {
		return fmt.Errorf("websocket config: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// validateServer validates server configuration
func validateServer(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}

	if config.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout cannot be negative")
	}

	if config.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout cannot be negative")
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	return nil
}

// validateSimulation validates simulation limits
func validateSimulation(config *SimulationConfig) error {
	if config.MaxStations < 0 {
		return fmt.Errorf("max_stations cannot be negative")
	}

	if config.MaxBitLength < 0 {
		return fmt.Errorf("max_bit_length cannot be negative")
	}

	if config.MaxWalshSize < 0 {
		return fmt.Errorf("max_walsh_size cannot be negative")
	}

	if config.MaxWalshSize > 0 && config.MaxWalshSize&(config.MaxWalshSize-1) != 0 {
		return fmt.Errorf("max_walsh_size must be a power of 2: %d", config.MaxWalshSize)
	}

	if config.HistorySize < 0 {
		return fmt.Errorf("history_size cannot be negative")
	}

	return nil
}

// validateWebSocket validates websocket configuration
func validateWebSocket(config *WebSocketConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be at least 1")
	}

	return nil
}

// validateLogging validates logging configuration
func validateLogging(config *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			config.Level, strings.Join(validLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)",
			config.Format, strings.Join(validFormats, ", "))
	}

	if config.MaxSize < 1 {
		return fmt.Errorf("max_size must be at least 1")
	}

	if config.MaxBackups < 0 {
		return fmt.Errorf("max_backups cannot be negative")
	}

	if config.MaxAge < 0 {
		return fmt.Errorf("max_age cannot be negative")
	}

	return nil
}
