package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the scenario tunables so CI can slow the timeouts down
// on loaded runners without touching the test code.
type Config struct {
	ReadTimeout time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"3s"`
	Password    string        `envconfig:"E2E_PASSWORD" default:"Sup3r-Secret-Pass!"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
