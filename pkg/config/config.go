package config

import "github.com/kelseyhightower/envconfig"

// Config is read from the environment (and .env) at start-up. Credentials
// are not part of it; they are resolved when needed.
type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	DataFile      string `envconfig:"DATA_FILE" default:"saved_people.json"`
	Provider      string `envconfig:"PROVIDER" default:"openai"`
	Model         string `envconfig:"MODEL"`
	BaseURL       string `envconfig:"BASE_URL"`
	Concurrent    bool   `envconfig:"COMPARE_CONCURRENT" default:"false"`
	Structured    bool   `envconfig:"COMPARE_STRUCTURED" default:"false"`
	SecretService string `envconfig:"SECRET_SERVICE" default:"strengths-compare"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
}

func New[T any](prefix string) (*T, error) {
	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}
