package backend

import (
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/config"
)

// ParseBackendType accepts DATA_BACKEND values case-insensitively.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		return "", fmt.Errorf("unknown backend %q (want one of %s)", s, strings.Join(BackendTypeNames(), ", "))
	}
	return bt, nil
}

// BackendTypeNames lists the accepted DATA_BACKEND values.
func BackendTypeNames() []string {
	names := make([]string, len(backendTypes))
	for i, t := range backendTypes {
		names[i] = t.String()
	}
	return names
}

// FromAppConfig derives the backend config. The memory backend seeds the
// accounts of the local user, the one requests run as without auth.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:          bt,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		AMQPURL:       appConfig.AMQPURL,
		AMQPExchange:  appConfig.AMQPExchange,
		AMQPQueue:     appConfig.AMQPQueue,
		DataDirectory: appConfig.DataDirectory,
		SeedUserID:    auth.LocalUserID,
	}, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if !c.Type.IsValid() {
		errs = append(errs, fmt.Errorf("invalid backend type %q", c.Type))
	}
	if c.Type == SQLiteBackend && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errs = append(errs, errors.New("sqlite backend needs a database path"))
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		errs = append(errs, errors.New("AMQP exchange and queue are required when AMQP URL is set"))
	}
	return errors.Join(errs...)
}
