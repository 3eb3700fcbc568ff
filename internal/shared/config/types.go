package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDebug() bool {
	return s.Mode == "debug"
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the MySQL DSN. Timestamps are stored and parsed as UTC.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type DiscordConfig struct {
	Token         string `mapstructure:"token"`
	ApplicationID string `mapstructure:"application_id"`
}

type AdminConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

func (a *AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type WorkflowConfig struct {
	ChannelDeleteDelaySeconds int    `mapstructure:"channel_delete_delay_seconds"`
	ChannelNamePrefix         string `mapstructure:"channel_name_prefix"`
	// Per-member caps on button presses; 0 disables a window.
	InteractionsPerMinute int `mapstructure:"interactions_per_minute"`
	InteractionsPerHour   int `mapstructure:"interactions_per_hour"`
}

func (w *WorkflowConfig) ChannelDeleteDelay() time.Duration {
	return time.Duration(w.ChannelDeleteDelaySeconds) * time.Second
}

type SchedulerConfig struct {
	ReminderIntervalMinutes int `mapstructure:"reminder_interval_minutes"`
	JobTimeoutMinutes       int `mapstructure:"job_timeout_minutes"`
}

func (s *SchedulerConfig) ReminderInterval() time.Duration {
	return time.Duration(s.ReminderIntervalMinutes) * time.Minute
}

func (s *SchedulerConfig) JobTimeout() time.Duration {
	return time.Duration(s.JobTimeoutMinutes) * time.Minute
}
