package env

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr        string        `env:"USENET_ADDR"`
	TLS         bool          `env:"USENET_TLS"`
	Username    string        `env:"USENET_USERNAME"`
	Password    string        `env:"USENET_PASSWORD"`
	Group       string        `env:"USENET_GROUP"`
	ReadTimeout time.Duration `env:"USENET_READ_TIMEOUT"`
	DebugHTTP   bool          `env:"USENET_DEBUG_HTTP"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
