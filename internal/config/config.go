package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Engine     EngineConfig     `mapstructure:"recommendation"`
	Generation GenerationConfig `mapstructure:"generation"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Neo4jConfig drives the optional peer prefilter. When disabled the
// collaborative strategy falls back to a Postgres scan.
type Neo4jConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers []string    `mapstructure:"brokers"`
	Topics  KafkaTopics `mapstructure:"topics"`
}

type KafkaTopics struct {
	ReviewAnalyzed         string `mapstructure:"review_analyzed"`
	RecommendationFeedback string `mapstructure:"recommendation_feedback"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig carries the hybrid engine's base strategy weights and the
// diversity selection thresholds.
type EngineConfig struct {
	ContentWeight       float64         `mapstructure:"content_weight"`
	CollaborativeWeight float64         `mapstructure:"collaborative_weight"`
	SentimentWeight     float64         `mapstructure:"sentiment_weight"`
	Diversity           DiversityConfig `mapstructure:"diversity"`
	Caching             CachingConfig   `mapstructure:"caching"`
}

type DiversityConfig struct {
	AutoAdmitScore    float64 `mapstructure:"auto_admit_score"`
	MinDiversityScore float64 `mapstructure:"min_diversity_score"`
	EarlyAdmitRatio   float64 `mapstructure:"early_admit_ratio"`
}

type CachingConfig struct {
	RecommendationsTTL time.Duration `mapstructure:"recommendations_ttl"`
	ToneTTL            time.Duration `mapstructure:"tone_ttl"`
}

// GenerationConfig points at the external language-generation service used
// for review analysis, tone descriptors and rationale text. An empty URL
// disables the client; every caller has a deterministic fallback.
type GenerationConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")

	viper.SetDefault("neo4j.enabled", false)

	viper.SetDefault("kafka.topics.review_analyzed", "review-analyzed")
	viper.SetDefault("kafka.topics.recommendation_feedback", "recommendation-feedback")

	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.requests", 1000)
	viper.SetDefault("auth.rate_limit.window", "1h")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("recommendation.content_weight", 0.5)
	viper.SetDefault("recommendation.collaborative_weight", 0.3)
	viper.SetDefault("recommendation.sentiment_weight", 0.2)

	viper.SetDefault("recommendation.diversity.auto_admit_score", 0.7)
	viper.SetDefault("recommendation.diversity.min_diversity_score", 0.5)
	viper.SetDefault("recommendation.diversity.early_admit_ratio", 0.6)

	viper.SetDefault("recommendation.caching.recommendations_ttl", "15m")
	viper.SetDefault("recommendation.caching.tone_ttl", "24h")

	viper.SetDefault("generation.model", "gemini-pro")
	viper.SetDefault("generation.timeout", "20s")
}
