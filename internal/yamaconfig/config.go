// Package yamaconfig loads the optional YAML configuration consumed
// by the demo shell and by tests that want non-default domain limits.
// The core itself never requires a config file to exist; DefaultConfig
// is always valid.
package yamaconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainConfig controls implementation-defined limits and toggles:
// the max register count ceiling, whether the verifier's dead-code
// warnings are logged, and which sink kind to wire up.
type DomainConfig struct {
	// MaxLocalsCeiling bounds how large a callable's declared
	// max-locals may be, independent of any one type's own limit.
	MaxLocalsCeiling int `yaml:"max_locals_ceiling"`

	// VerifyDeadCode gates whether the verifier's dead-code warnings
	// reach the sink. Disabling it only suppresses warnings, never errors.
	VerifyDeadCode bool `yaml:"verify_dead_code"`

	// Sink selects which debugsink.Sink implementation the demo shell
	// constructs: "console" or "buffer".
	Sink string `yaml:"sink"`
}

// DefaultConfig returns the configuration a Domain uses when none is
// supplied.
func DefaultConfig() DomainConfig {
	return DomainConfig{
		MaxLocalsCeiling: 256,
		VerifyDeadCode:   true,
		Sink:             "console",
	}
}

// Load reads and parses a DomainConfig from a YAML file, filling
// unset fields from DefaultConfig.
func Load(path string) (DomainConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
