package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source        SourceConfig        `yaml:"source" mapstructure:"source"`
	Extract       ExtractConfig       `yaml:"extract" mapstructure:"extract"`
	Match         MatchConfig         `yaml:"match" mapstructure:"match"`
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Ledgers       LedgersConfig       `yaml:"ledgers" mapstructure:"ledgers"`
	Sheets        SheetsConfig        `yaml:"sheets" mapstructure:"sheets"`
	ServiceCenter ServiceCenterConfig `yaml:"service_center" mapstructure:"service_center"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects where contract documents come from.
type SourceConfig struct {
	// Kind is "dir" or "ftp".
	Kind string `yaml:"kind" mapstructure:"kind"`
	Dir  string `yaml:"dir" mapstructure:"dir"`

	FTPHost string `yaml:"ftp_host" mapstructure:"ftp_host"`
	FTPDir  string `yaml:"ftp_dir" mapstructure:"ftp_dir"`
	FTPUser string `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPass string `yaml:"ftp_pass" mapstructure:"ftp_pass"`

	// Text selects the PDF text provider: "native" or "pdftotext".
	Text          string `yaml:"text" mapstructure:"text"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ExtractConfig configures field extraction.
type ExtractConfig struct {
	// RulesFile points at a YAML pattern table; empty uses the built-in
	// rules.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// MatchConfig configures sales rep resolution.
type MatchConfig struct {
	RegistryFile string  `yaml:"registry_file" mapstructure:"registry_file"`
	Threshold    float64 `yaml:"threshold" mapstructure:"threshold"`
}

// StoreConfig configures the processed-document store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LedgersConfig names the reconciliation targets.
type LedgersConfig struct {
	// Backend is "sheets" or "xlsx". Refs are spreadsheet IDs for the
	// sheets backend and workbook paths for xlsx.
	Backend string `yaml:"backend" mapstructure:"backend"`
	Master  string `yaml:"master" mapstructure:"master"`
	Backup  string `yaml:"backup" mapstructure:"backup"`
}

// SheetsConfig holds Sheets API settings.
type SheetsConfig struct {
	Token   string  `yaml:"token" mapstructure:"token"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// ServiceCenterConfig holds lead API credentials and polling budget.
type ServiceCenterConfig struct {
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	APISecret     string  `yaml:"api_secret" mapstructure:"api_secret"`
	MVendorID     int     `yaml:"mvendor_id" mapstructure:"mvendor_id"`
	StoreID       string  `yaml:"store_id" mapstructure:"store_id"`
	ReferralStore string  `yaml:"referral_store" mapstructure:"referral_store"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RPS           float64 `yaml:"rps" mapstructure:"rps"`
	ProgramGroup  string  `yaml:"program_group" mapstructure:"program_group"`

	AcquireMaxAttempts  int     `yaml:"acquire_max_attempts" mapstructure:"acquire_max_attempts"`
	AcquireInitialSecs  int     `yaml:"acquire_initial_secs" mapstructure:"acquire_initial_secs"`
	AcquireMaxDelaySecs int     `yaml:"acquire_max_delay_secs" mapstructure:"acquire_max_delay_secs"`
	AcquireMultiplier   float64 `yaml:"acquire_multiplier" mapstructure:"acquire_multiplier"`
}

// PipelineConfig configures batch processing.
type PipelineConfig struct {
	Concurrency   int  `yaml:"concurrency" mapstructure:"concurrency"`
	MarkProcessed bool `yaml:"mark_processed" mapstructure:"mark_processed"`
	// PollSecs is the watch-loop interval.
	PollSecs int `yaml:"poll_secs" mapstructure:"poll_secs"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.kind", "dir")
	v.SetDefault("source.dir", "./contracts")
	v.SetDefault("source.text", "native")
	v.SetDefault("source.pdftotext_path", "pdftotext")
	v.SetDefault("match.registry_file", "reps.yaml")
	v.SetDefault("match.threshold", 0.80)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "processed.db")
	v.SetDefault("ledgers.backend", "sheets")
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("sheets.rps", 1)
	v.SetDefault("service_center.base_url", "https://api.hs.homedepot.com/iconx/v1")
	v.SetDefault("service_center.rps", 2)
	v.SetDefault("service_center.program_group", "SF&I Water Treatment")
	v.SetDefault("service_center.acquire_max_attempts", 5)
	v.SetDefault("service_center.acquire_initial_secs", 10)
	v.SetDefault("service_center.acquire_max_delay_secs", 60)
	v.SetDefault("service_center.acquire_multiplier", 1.5)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.mark_processed", true)
	v.SetDefault("pipeline.poll_secs", 300)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
