package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "school-matcher"
	envPrefix = "SCHOOL_MATCHER"
)

type Config struct {
	Source    *SourceConfig  `mapstructure:"source"`
	Cache     *CacheConfig   `mapstructure:"cache"`
	Divisions []string       `mapstructure:"divisions"`
	Limit     int            `mapstructure:"limit"`
	Metrics   *MetricsConfig `mapstructure:"metrics"`
	AI        *AIConfig      `mapstructure:"ai"`
}

type SourceConfig struct {
	// Kind is one of file, http or postgres.
	Kind     string          `mapstructure:"kind"`
	File     string          `mapstructure:"file"`
	HTTP     *HTTPConfig     `mapstructure:"http"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
}

type HTTPConfig struct {
	URL        string `mapstructure:"url"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type PostgresConfig struct {
	DSNFile string `mapstructure:"dsn-file"`
	Table   string `mapstructure:"table"`
}

type CacheConfig struct {
	Redis *RedisConfig  `mapstructure:"redis"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	PasswordFile string `mapstructure:"password-file"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Top     int           `mapstructure:"top"`
	Tone    string        `mapstructure:"tone"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "school-matcher filters a school pool by must-have preferences and annotates nice-to-have fits",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is school-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

// setDefaults registers every key so AutomaticEnv overrides reach Unmarshal.
func setDefaults() {
	viper.SetDefault("source.kind", "file")
	viper.SetDefault("source.file", "schools.json")
	viper.SetDefault("source.http.url", "")
	viper.SetDefault("source.http.api-key-file", "")
	viper.SetDefault("source.postgres.dsn-file", "")
	viper.SetDefault("source.postgres.table", "")
	viper.SetDefault("cache.redis.address", "")
	viper.SetDefault("cache.redis.password-file", "")
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("divisions", []string{})
	viper.SetDefault("limit", 10)
	viper.SetDefault("metrics.textfile", "")
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.top", 5)
	viper.SetDefault("ai.tone", "")
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// Only match and filters read the config. Other commands skip initialization.
	if matchCmd.CalledAs() == "" && filtersCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine: defaults and env cover every key.
	// An explicit --config or a broken file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
