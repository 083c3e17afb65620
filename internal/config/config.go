package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/bitboard"
	"github.com/rocketscienceinc/square-backend/internal/square"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Game       Game    `yaml:"game"`
	Suggest    Suggest `yaml:"suggest"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	BoardSize int           `yaml:"board-size" env:"BOARD_SIZE" env-default:"5"`
	TTL       time.Duration `yaml:"ttl" env:"GAME_TTL" env-default:"24h"`
}

// Suggest configures the remote move-suggestion service; an empty URL disables it.
type Suggest struct {
	URL     string        `yaml:"url" env:"SUGGEST_URL" env-default:""`
	Timeout time.Duration `yaml:"timeout" env:"SUGGEST_TIMEOUT" env-default:"5s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	size := that.Game.BoardSize
	if size < square.MinSize || size > bitboard.MaxSize {
		return fmt.Errorf("%w: board-size %d outside [%d,%d]", apperror.ErrInvalidBoard, size, square.MinSize, bitboard.MaxSize)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Suggest) Enabled() bool {
	return that.URL != ""
}
