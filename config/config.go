package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Payment     PaymentConfig     `mapstructure:"payment"`
	Generator   GeneratorConfig   `mapstructure:"generator"`
	Materialize MaterializeConfig `mapstructure:"materialize"`
	Pregen      PregenConfig      `mapstructure:"pregen"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type PaymentConfig struct {
	KeyID     string                `mapstructure:"key_id"`
	KeySecret string                `mapstructure:"key_secret"`
	Currency  string                `mapstructure:"currency"`
	Plans     map[string]PlanConfig `mapstructure:"plans"`
}

// PlanConfig 套餐价格，Amount 为最小货币单位（paise）
type PlanConfig struct {
	Amount int64 `mapstructure:"amount"`
}

type GeneratorConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	QuizQuestions  int    `mapstructure:"quiz_questions"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type MaterializeConfig struct {
	LockTTLSeconds  int `mapstructure:"lock_ttl_seconds"`
	LockWaitSeconds int `mapstructure:"lock_wait_seconds"`
}

type PregenConfig struct {
	MaxAttempts       int `mapstructure:"max_attempts"`
	InitialBackoffMs  int `mapstructure:"initial_backoff_ms"`
	MaxBackoffMs      int `mapstructure:"max_backoff_ms"`
	ChapterIntervalMs int `mapstructure:"chapter_interval_ms"`
	ScheduleMinutes   int `mapstructure:"schedule_interval_minutes"` // 在线服务内定时补齐，0 表示关闭
	BatchLimit        int `mapstructure:"batch_limit"`
}

// 默认套餐：MONTHLY ₹10，YEARLY ₹100
var DefaultPlans = map[string]PlanConfig{
	"MONTHLY": {Amount: 1000},
	"YEARLY":  {Amount: 10000},
}

func Load(configPath string) (*Config, error) {
	// .env 只用于注入密钥，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Payment.Plans = normalizePlans(cfg.Payment.Plans)

	return &cfg, nil
}

// normalizePlans viper 会把 map 键转成小写，这里还原为套餐名并补齐缺省套餐
func normalizePlans(plans map[string]PlanConfig) map[string]PlanConfig {
	out := make(map[string]PlanConfig, len(DefaultPlans))
	for name, plan := range DefaultPlans {
		out[name] = plan
	}
	for name, plan := range plans {
		if plan.Amount > 0 {
			out[strings.ToUpper(name)] = plan
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("generator.model", "gemini-2.5-flash")
	v.SetDefault("generator.quiz_questions", 10)
	v.SetDefault("generator.timeout_seconds", 120)
	v.SetDefault("materialize.lock_ttl_seconds", 180)
	v.SetDefault("materialize.lock_wait_seconds", 150)
	v.SetDefault("pregen.max_attempts", 3)
	v.SetDefault("pregen.initial_backoff_ms", 2000)
	v.SetDefault("pregen.max_backoff_ms", 10000)
	v.SetDefault("pregen.chapter_interval_ms", 2000)
	v.SetDefault("pregen.schedule_interval_minutes", 0)
	v.SetDefault("pregen.batch_limit", 20)
}
