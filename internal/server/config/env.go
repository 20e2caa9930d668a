package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// portEnv carries the PORT variable, which only names the HTTP port.
type portEnv struct {
	Port string `env:"PORT"`
}

// parseEnv overlays fields whose environment variables are set. PORT is
// applied on top of HTTP_ADDR as ":<port>".
func parseEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	p, err := env.ParseAs[portEnv]()
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if p.Port != "" {
		config.EndpointAddrHTTP = ":" + p.Port
	}
	return nil
}
