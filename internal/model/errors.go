package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is matched by every configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrNoKeyMapping is returned when no column maps onto /ocid.
	ErrNoKeyMapping = errors.New("no column is mapped to /ocid")
)

// ConfigError reports an invalid template, schema or data source setting.
// Configuration errors are fatal; data issues never are.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}

	if e.Component == "" {
		return msg
	}

	return fmt.Sprintf("%s: %s", e.Component, msg)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigError match ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
