package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type DatabaseConfig struct {
	// Driver 选择题库实现: "gorm" 或 "postgres-raw"
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	RoundsPerGame    int           `mapstructure:"rounds_per_game"`
	QuestionsPerGame int           `mapstructure:"questions_per_game"`
	CleanupGrace     time.Duration `mapstructure:"cleanup_grace"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.op_timeout", 3*time.Second)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("game.rounds_per_game", 20)
	viper.SetDefault("game.questions_per_game", 20)
	viper.SetDefault("game.cleanup_grace", 60*time.Second)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
