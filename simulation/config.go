package simulation

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/model"
)

// DefaultMaxRounds is the round cap used when none is configured.
const DefaultMaxRounds = 1000

// Config holds the parameters of a run.
type Config struct {
	Model              model.Kind        `yaml:"model"`
	MaxRounds          int               `yaml:"max_rounds"`
	MessageSizeLimit   int               `yaml:"message_size_limit,omitempty"`
	IdentityVisibility model.Visibility  `yaml:"identity_visibility,omitempty"`
	DecidedPolicy      sim.DecidedPolicy `yaml:"decided_policy,omitempty"`
}

// DefaultConfig returns a LOCAL configuration with the default round cap.
func DefaultConfig() Config {
	return Config{
		Model:     model.LOCAL,
		MaxRounds: DefaultMaxRounds,
	}
}

// LoadConfig reads a YAML configuration. Missing fields keep the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return c, c.Validate()
}

// Validate checks that the parameters can be used together.
func (c Config) Validate() error {
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive, got %d", c.MaxRounds)
	}

	switch c.DecidedPolicy {
	case sim.Participate, sim.Halt:
	default:
		return fmt.Errorf("unknown decided policy %d", c.DecidedPolicy)
	}

	_, err := model.New(c.modelConfig(), 1)

	return err
}

func (c Config) modelConfig() model.Config {
	return model.Config{
		Kind:             c.Model,
		Visibility:       c.IdentityVisibility,
		MessageSizeLimit: c.MessageSizeLimit,
	}
}
