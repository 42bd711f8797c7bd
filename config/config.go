package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（状态快照缓存、提交锁、限流、刷新广播）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置（令牌由统一认证签发，本服务只校验）
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScheduleConfig 房间状态计算与刷新配置
type ScheduleConfig struct {
	Timezone        string            `mapstructure:"timezone"`
	NowTickInterval time.Duration     `mapstructure:"now_tick_interval"`
	RefreshInterval time.Duration     `mapstructure:"refresh_interval"`
	SubmitLockTTL   time.Duration     `mapstructure:"submit_lock_ttl"`
	SnapshotTTL     time.Duration     `mapstructure:"snapshot_ttl"`
	DefaultLanguage string            `mapstructure:"default_language"`
	RoomAliases     map[string]string `mapstructure:"room_aliases"` // 别名 → 房间名称（两侧均先规范化）
}

// Location 解析配置的时区
func (c *ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	SubmitRateLimit       int           `mapstructure:"submit_rate_limit"`
	SubmitRateLimitWindow time.Duration `mapstructure:"submit_rate_limit_window"`
	RefreshBroadcast      bool          `mapstructure:"refresh_broadcast"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，缺失时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "simpeluny")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Jakarta")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("schedule.timezone", "Asia/Jakarta")
	v.SetDefault("schedule.now_tick_interval", "1m")
	v.SetDefault("schedule.refresh_interval", "5m")
	v.SetDefault("schedule.submit_lock_ttl", "10s")
	v.SetDefault("schedule.snapshot_ttl", "15m")
	v.SetDefault("schedule.default_language", "id")

	v.SetDefault("feature.submit_rate_limit", 10)
	v.SetDefault("feature.submit_rate_limit_window", "1m")
	v.SetDefault("feature.refresh_broadcast", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SIMPEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("配置校验失败: schedule.timezone 无效: %w", err)
	}
	if c.Schedule.NowTickInterval <= 0 || c.Schedule.RefreshInterval <= 0 {
		return fmt.Errorf("配置校验失败: schedule 刷新间隔必须为正数")
	}
	switch c.Schedule.DefaultLanguage {
	case "id", "en", "zh":
	default:
		return fmt.Errorf("配置校验失败: schedule.default_language 仅支持 id/en/zh")
	}
	return nil
}
