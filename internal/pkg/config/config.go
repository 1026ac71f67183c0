package config

import (
	"io"
	"time"
)

// TimeConfig reads durations stored as plain integers.
type TimeConfig interface {
	// GetMillisecond reads key as a number of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads key as a number of minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or unparsable keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
}

// Config is the read-only view of the service configuration.
//
// Keys are dot separated (e.g. "twofactor.totp.period"). Every key can be
// overridden from the environment, see NewViper.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool reads key as a bool.
	GetBool(key string) bool

	// GetString reads key as a string.
	GetString(key string) string

	// GetArray reads a comma separated list. Blank elements are dropped.
	GetArray(key string) []string

	// IsSet reports whether key has a value from any source, defaults included.
	IsSet(key string) bool
}
