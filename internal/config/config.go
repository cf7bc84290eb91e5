package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/timmy/retweets/internal/domain"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Model     ModelConfig     `mapstructure:"model"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Text      TextConfig      `mapstructure:"text"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ModelConfig points at the model server hosting the trained regressor.
type ModelConfig struct {
	URL     string        `mapstructure:"url"`
	Name    string        `mapstructure:"name"`
	Version string        `mapstructure:"version"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TokenizerConfig struct {
	// Path is a local or s3:// location of the vocabulary file.
	Path      string `mapstructure:"path"`
	OOVToken  string `mapstructure:"oov_token"`
	PadSide   string `mapstructure:"pad_side"`
	MaxLength int    `mapstructure:"max_length"`
}

// TextConfig overrides the built-in normalizer resources. Empty paths use
// the embedded defaults.
type TextConfig struct {
	StopwordsPath      string `mapstructure:"stopwords_path"`
	LemmaExceptionPath string `mapstructure:"lemma_exceptions_path"`
}

// Load reads configuration from .env, the YAML file and the environment.
// Parameters:
//   - configPath: explicit config file; empty searches ./configs and . for config.yaml.
// Returns:
//   - *Config: merged configuration with defaults applied.
//   - error: non-nil if the file exists but cannot be parsed.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and the conventional variable names.
	v.BindEnv("storage.access_key", "AWS_ACCESS_KEY_ID")
	v.BindEnv("storage.secret_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("storage.region", "AWS_DEFAULT_REGION")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("model.url", "MODEL_SERVER_URL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.environment", "APP_ENV")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/tweets.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "tweets")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("model.url", "http://localhost:8501")
	v.SetDefault("model.name", "retweets")
	v.SetDefault("model.timeout", 10*time.Second)

	v.SetDefault("tokenizer.path", "./models/vocabulary.json")
	v.SetDefault("tokenizer.oov_token", "<OOV>")
	v.SetDefault("tokenizer.pad_side", "after")
	v.SetDefault("tokenizer.max_length", 50)

	v.SetDefault("pipeline.sources.first.path", "s3://2021-msia423-yu-dian/realdonaldtrump.csv")
	v.SetDefault("pipeline.sources.first.columns", []string{"date", "content", "retweets"})
	v.SetDefault("pipeline.sources.second.path", "s3://2021-msia423-yu-dian/trumptweets.csv")
	v.SetDefault("pipeline.sources.second.columns", []string{"date", "content", "retweets"})
	v.SetDefault("pipeline.combine.columns", []string{"date", "content", "retweets"})
	v.SetDefault("pipeline.combine.date_column", "date")
	v.SetDefault("pipeline.combine.start", "2009-01-01")
	v.SetDefault("pipeline.combine.end", "2021-01-01")
	v.SetDefault("pipeline.clean.content_column", "content")
	v.SetDefault("pipeline.clean.label_column", "retweets")
	v.SetDefault("pipeline.clean.outlier_cutoff", 100000)
	v.SetDefault("pipeline.clean.left_tail", false)
	v.SetDefault("pipeline.split.test_size", 0.2)
	v.SetDefault("pipeline.split.seed", 42)
	v.SetDefault("pipeline.output.combined", "./data/interim/combined.csv")
	v.SetDefault("pipeline.output.cleaned", "./data/interim/cleaned.csv")
	v.SetDefault("pipeline.output.processed", "./data/processed/processed.csv")
	v.SetDefault("pipeline.output.train", "./data/processed/train.csv")
	v.SetDefault("pipeline.output.test", "./data/processed/test.csv")
	v.SetDefault("pipeline.output.train_sequences", "./data/processed/train_sequences.json")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "local")
	v.SetDefault("log.file", "/var/log/retweets/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Tokenizer.MaxLength <= 0 {
		return fmt.Errorf("tokenizer.max_length must be positive: %w", domain.ErrInvalidInput)
	}
	switch c.Tokenizer.PadSide {
	case "before", "after", "pre", "post":
	default:
		return fmt.Errorf("tokenizer.pad_side %q: %w", c.Tokenizer.PadSide, domain.ErrInvalidInput)
	}
	return c.Pipeline.Validate()
}
