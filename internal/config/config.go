package config

import (
	"strings"
	"sync"

	"github.com/bitapeslabs/nana/common"
	"github.com/bitapeslabs/nana/internal/postgres"
	"github.com/bitapeslabs/nana/pkg/logger"
	"github.com/bitapeslabs/nana/pkg/middleware/requestcontext"
	"github.com/bitapeslabs/nana/pkg/middleware/requestlogger"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Logger        logger.Config     `mapstructure:"logger"`
	BitcoinNode   BitcoinNodeClient `mapstructure:"bitcoin_node"`
	Network       common.Network    `mapstructure:"network"`
	APIOnly       bool              `mapstructure:"api_only"`
	EnableModules []string          `mapstructure:"enable_modules"`
	HTTPServer    HTTPServerConfig  `mapstructure:"http_server"`
	Modules       Modules           `mapstructure:"modules"`
}

type BitcoinNodeClient struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Dunes DunesModule `mapstructure:"dunes"`
}

type DunesModule struct {
	Database    string          `mapstructure:"database"`    // e.g. "postgres"
	Datasource  string          `mapstructure:"datasource"`  // e.g. "bitcoin-node"
	APIHandlers []string        `mapstructure:"api_handlers"`
	Postgres    postgres.Config `mapstructure:"postgres"`
}

var (
	configOnce sync.Once
	config     = Config{
		Logger: logger.Config{
			Output: "text",
		},
		BitcoinNode: BitcoinNodeClient{
			User: "user",
			Pass: "pass",
		},
		Network: common.NetworkMainnet,
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
		EnableModules: []string{"dunes"},
		Modules: Modules{
			Dunes: DunesModule{
				Database:    "postgres",
				Datasource:  "bitcoin-node",
				APIHandlers: []string{"http"},
			},
		},
	}
)

// BindPFlag binds a cobra flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", "key", key)
	}
}

// Parse loads the configuration from the given file (or ./config.yaml),
// overridable by environment variables.
func Parse(configFile string) Config {
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.Warn("config file not found, using defaults")
			} else {
				logger.Panic("invalid config file")
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.Panic("failed to unmarshal config")
		}
	})
	return config
}

// Load returns the parsed configuration.
func Load() Config {
	return Parse("")
}
