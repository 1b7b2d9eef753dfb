package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/eduplatform/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name in Config's env tags.
const EnvPrefix = "EDU_"

// parseEnv overlays EDU_* environment variables onto config. Variables
// from a dotenv file (-env flag, else ./.env if present) are loaded first
// without overriding the real environment. Unset variables leave fields
// untouched. Malformed values panic, like a broken JSON file does.
func parseEnv(config *Config) {
	loadDotEnv(flagx.EnvFileFlag())

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}

func loadDotEnv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}
