package cmt

import (
	"errors"
	"strings"
	"time"
)

// DefaultEndpoint is the production CMT middleware endpoint
const DefaultEndpoint = "https://my.middleware.com"

// Config validation errors
var (
	ErrConfigMissingEndpoint = errors.New("cmt: endpoint is required")
)

// Config holds connection settings for the CMT middleware
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewConfig creates a config for the given endpoint with sane defaults
func NewConfig(endpoint string) *Config {
	return &Config{
		Endpoint: endpoint,
		Timeout:  30 * time.Second,
	}
}

// Validate checks the config and fills in defaults
func (c *Config) Validate() error {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	if c.Endpoint == "" {
		return ErrConfigMissingEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
