package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type MonitorConfig struct {
	Address   string `mapstructure:"address"`
	Namespace string `mapstructure:"namespace"`
}

// GameConfig holds the tunables consumed at room/game construction time.
type GameConfig struct {
	Offline          bool `mapstructure:"offline"`
	BotCount         int  `mapstructure:"bot_count"`
	MaxRounds        int  `mapstructure:"max_rounds"`
	StartTemperature int  `mapstructure:"start_temperature"`
	StartOxygen      int  `mapstructure:"start_oxygen"`
	StartHull        int  `mapstructure:"start_hull"`
	StartMorale      int  `mapstructure:"start_morale"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "raw"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":3000")
	viper.SetDefault("server.rpc_address", ":3001")
	viper.SetDefault("monitor.address", ":9100")
	viper.SetDefault("monitor.namespace", "thecrew")
	viper.SetDefault("game.bot_count", 3)
	viper.SetDefault("game.max_rounds", 15)
	viper.SetDefault("game.start_temperature", 100)
	viper.SetDefault("game.start_oxygen", 100)
	viper.SetDefault("game.start_hull", 100)
	viper.SetDefault("game.start_morale", 100)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
