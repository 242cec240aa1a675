package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/model"
	"github.com/sarchlab/dasim/simulation"
)

// Environment variables that provide the defaults of the run parameters.
const (
	EnvModel            = "DASIM_MODEL"
	EnvMaxRounds        = "DASIM_MAX_ROUNDS"
	EnvMessageSizeLimit = "DASIM_MESSAGE_SIZE_LIMIT"
	EnvVisibility       = "DASIM_VISIBILITY"
	EnvPolicy           = "DASIM_POLICY"
)

func loadEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Cannot load .env: %v\n", err)
	}
}

// applyEnv overrides the configuration with the DASIM_* variables that are
// set. It reports whether the model was among them.
func applyEnv(c *simulation.Config) (modelSet bool, err error) {
	if v := os.Getenv(EnvModel); v != "" {
		c.Model, err = model.ParseKind(v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", EnvModel, err)
		}

		modelSet = true
	}

	if v := os.Getenv(EnvMaxRounds); v != "" {
		c.MaxRounds, err = strconv.Atoi(v)
		if err != nil {
			return modelSet, fmt.Errorf("%s: %w", EnvMaxRounds, err)
		}
	}

	if v := os.Getenv(EnvMessageSizeLimit); v != "" {
		c.MessageSizeLimit, err = strconv.Atoi(v)
		if err != nil {
			return modelSet, fmt.Errorf("%s: %w", EnvMessageSizeLimit, err)
		}
	}

	if v := os.Getenv(EnvVisibility); v != "" {
		c.IdentityVisibility, err = model.ParseVisibility(v)
		if err != nil {
			return modelSet, fmt.Errorf("%s: %w", EnvVisibility, err)
		}
	}

	if v := os.Getenv(EnvPolicy); v != "" {
		c.DecidedPolicy, err = sim.ParseDecidedPolicy(v)
		if err != nil {
			return modelSet, fmt.Errorf("%s: %w", EnvPolicy, err)
		}
	}

	return modelSet, nil
}
