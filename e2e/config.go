package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RelayAddr string `envconfig:"RELAY_ADDR" default:"localhost:8080"`
	// E2E_DEBUG_JSON allows dumping full HTTP request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_RECEIVE_TIMEOUT bounds how long a scenario waits for a websocket frame
	ReceiveTimeout string `envconfig:"E2E_RECEIVE_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
