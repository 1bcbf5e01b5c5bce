package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Survey    SurveyConfig    `mapstructure:"survey"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// SurveyConfig 标注流程参数，支持热更新
type SurveyConfig struct {
	// MinViewTimeMs 每个链接的最短注视时长（问卷可覆盖）
	MinViewTimeMs int64 `mapstructure:"min_view_time_ms"`
	// HeartbeatTimeoutMs 超过该时长未收到心跳即认为外部窗口已消失
	HeartbeatTimeoutMs int64 `mapstructure:"heartbeat_timeout_ms"`
	// HostFocusDebounceMs 宿主焦点推断的防抖窗口
	HostFocusDebounceMs int64 `mapstructure:"host_focus_debounce_ms"`
	// SessionIdleMinutes 空闲答题会话的回收时间
	SessionIdleMinutes int `mapstructure:"session_idle_minutes"`
}

// envBindings 允许用环境变量覆盖的配置项（键 → PAIRJUDGE_ 后缀）
var envBindings = map[string]string{
	"server.mode":                 "SERVER_MODE",
	"database.host":               "DATABASE_HOST",
	"database.port":               "DATABASE_PORT",
	"database.user":               "DATABASE_USER",
	"database.password":           "DATABASE_PASSWORD",
	"database.dbname":             "DATABASE_NAME",
	"jwt.secret":                  "JWT_SECRET",
	"redis.host":                  "REDIS_HOST",
	"redis.port":                  "REDIS_PORT",
	"redis.password":              "REDIS_PASSWORD",
	"survey.min_view_time_ms":     "SURVEY_MIN_VIEW_TIME_MS",
	"survey.heartbeat_timeout_ms": "SURVEY_HEARTBEAT_TIMEOUT_MS",
	"storage.type":                "STORAGE_TYPE",
	"storage.minio_endpoint":      "MINIO_ENDPOINT",
	"storage.minio_access_key":    "MINIO_ACCESS_KEY",
	"storage.minio_secret_key":    "MINIO_SECRET_KEY",
	"storage.minio_bucket":        "MINIO_BUCKET",
	"storage.oss_endpoint":        "OSS_ENDPOINT",
	"storage.oss_access_key":      "OSS_ACCESS_KEY",
	"storage.oss_secret_key":      "OSS_SECRET_KEY",
	"storage.oss_bucket":          "OSS_BUCKET",
	"tracing.enabled":             "TRACING_ENABLED",
	"tracing.collector_endpoint":  "TRACING_COLLECTOR_ENDPOINT",
}

// LoadConfig 读取 path 下的 config.yaml。每次调用使用独立的 viper 实例，
// 配置热更新会重复调用本函数。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PAIRJUDGE")
	v.AutomaticEnv()
	for key, env := range envBindings {
		v.BindEnv(key, "PAIRJUDGE_"+env)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime *= time.Hour
	applySurveyDefaults(&cfg.Survey)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if err := os.MkdirAll(cfg.Storage.LocalPath, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	return &cfg, nil
}

func applySurveyDefaults(s *SurveyConfig) {
	if s.MinViewTimeMs <= 0 {
		s.MinViewTimeMs = 10000
	}
	if s.HeartbeatTimeoutMs <= 0 {
		s.HeartbeatTimeoutMs = 5000
	}
	if s.HostFocusDebounceMs <= 0 {
		s.HostFocusDebounceMs = 300
	}
	if s.SessionIdleMinutes <= 0 {
		s.SessionIdleMinutes = 30
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}
	return nil
}
