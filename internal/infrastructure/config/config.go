package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/orrisdesk/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Discord   sharedConfig.DiscordConfig   `mapstructure:"discord"`
	Admin     sharedConfig.AdminConfig     `mapstructure:"admin"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Workflow  sharedConfig.WorkflowConfig  `mapstructure:"workflow"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`
}

// Load reads configuration from the config file and ORRISDESK_* environment
// variables. A .env file in the working directory is loaded first when present.
// An empty configPath searches ./configs, ../configs and ../../configs.
func Load(env, configPath string) (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ORRISDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timezone", "Asia/Kolkata")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "orrisdesk.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "orrisdesk")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Keys without a default are invisible to env overrides on Unmarshal.
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.application_id", "")

	v.SetDefault("admin.jwt_secret", "change-me-in-production")
	v.SetDefault("admin.token_ttl_hours", 24)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@orrisdesk.local")
	v.SetDefault("email.from_name", "Orris Desk")

	v.SetDefault("workflow.channel_delete_delay_seconds", 10)
	v.SetDefault("workflow.channel_name_prefix", "ticket")
	v.SetDefault("workflow.interactions_per_minute", 20)
	v.SetDefault("workflow.interactions_per_hour", 300)

	v.SetDefault("scheduler.reminder_interval_minutes", 60)
	v.SetDefault("scheduler.job_timeout_minutes", 10)
}
