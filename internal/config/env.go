package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAddr    = "PARTICLEFIELD_ADDR"
	EnvPreset  = "PARTICLEFIELD_PRESET"
	EnvDataDir = "PARTICLEFIELD_DATA"
)

// Env holds settings taken from the environment and .env files. Process
// variables win over file values.
type Env struct {
	Addr    string
	Preset  string
	DataDir string
}

// LoadEnv reads the given dotenv files, ".env" when none are named. Missing
// files are skipped. The process environment is not modified.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	vars := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Env{}, err
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return vars[key]
	}
	return Env{
		Addr:    lookup(EnvAddr),
		Preset:  lookup(EnvPreset),
		DataDir: lookup(EnvDataDir),
	}, nil
}

// Apply copies non-empty environment values into cfg. Preset is left to the
// caller, which resolves it before loading.
func (e Env) Apply(cfg *Config) {
	if e.Addr != "" {
		cfg.Addr = e.Addr
	}
	if e.DataDir != "" {
		cfg.DataDir = e.DataDir
	}
}
