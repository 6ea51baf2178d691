package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is the full server configuration, populated from the environment.
type Config struct {
	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Storage struct {
		// Backend selects the record store: "file" or "sqlite".
		Backend    string `env:"STORAGE_BACKEND" envDefault:"file"`
		DataFile   string `env:"DATA_FILE" envDefault:"data/suburbs-data.json"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"data/suburbs.db"`
	}

	Gazetteer struct {
		Path string `env:"GAZETTEER_PATH" envDefault:"data/suburbs.json"`
	}

	Census struct {
		APIBase        string        `env:"ABS_API_BASE" envDefault:"https://data.api.abs.gov.au/rest/data"`
		Timeout        time.Duration `env:"ABS_API_TIMEOUT" envDefault:"10s"`
		LanguagesPath  string        `env:"CENSUS_LANGUAGES_PATH" envDefault:"data/census-languages.json"`
		OccupationPath string        `env:"CENSUS_OCCUPATIONS_PATH" envDefault:"data/census-occupations.json"`
	}

	Enrichment struct {
		QueueSize     int           `env:"ENRICH_QUEUE_SIZE" envDefault:"100"`
		WorkerCount   int           `env:"ENRICH_WORKER_COUNT" envDefault:"2"`
		SweepInterval time.Duration `env:"ENRICH_SWEEP_INTERVAL" envDefault:"6h"`
	}

	Telegram struct {
		Enabled  bool    `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string  `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string  `env:"TELEGRAM_CHAT_ID"`
		MinYield float64 `env:"TELEGRAM_MIN_YIELD" envDefault:"0"`
	}
}

// LoadConfig parses the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
