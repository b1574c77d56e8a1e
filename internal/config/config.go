package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort               string  `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL            string  `env:"DATABASE_URL"`
	LLMAPIKey              string  `env:"LLM_API_KEY"`
	LLMBaseURL             string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel               string  `env:"LLM_MODEL" envDefault:"gpt-5.1"`
	EmbeddingModel         string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ScoreThreshold         float64 `env:"SCORE_THRESHOLD" envDefault:"0.85"`
	SessionSweepHours      int     `env:"SESSION_SWEEP_HOURS" envDefault:"24"`
	RedisAddr              string  `env:"REDIS_ADDR"`
	RedisPassword          string  `env:"REDIS_PASSWORD"`
	RedisDB                int     `env:"REDIS_DB" envDefault:"0"`
	RateLimitWindowSeconds int     `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitMax           int     `env:"RATE_LIMIT_MAX" envDefault:"120"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
