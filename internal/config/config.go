package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Identity  IdentityConfig
	RateLimit RateLimitConfig
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoSchema   bool
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// IdentityConfig describes how session tokens issued by the external
// identity provider are verified and where profile lookups go.
type IdentityConfig struct {
	JWTSecret       string
	JWTPublicKeyPEM string
	Issuer          string
	APIBaseURL      string
	APISecretKey    string
	ProfileCacheTTL time.Duration
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

func setDefaults() {
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("db.max_open_conns", 20)
	viper.SetDefault("db.max_idle_conns", 5)
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("identity.profile_cache_ttl", 600)
	viper.SetDefault("rate_limit.max", 30)
	viper.SetDefault("rate_limit.window", 60)
}

func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		DB: DBConfig{
			Host:         viper.GetString("db.host"),
			Port:         viper.GetInt("db.port"),
			User:         viper.GetString("db.user"),
			Password:     viper.GetString("db.password"),
			DBName:       viper.GetString("db.name"),
			SSLMode:      viper.GetString("db.sslmode"),
			MaxOpenConns: viper.GetInt("db.max_open_conns"),
			MaxIdleConns: viper.GetInt("db.max_idle_conns"),
			AutoSchema:   viper.GetBool("db.auto_schema"),
		},
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Identity: IdentityConfig{
			JWTSecret:       viper.GetString("identity.jwt_secret"),
			JWTPublicKeyPEM: viper.GetString("identity.jwt_public_key_pem"),
			Issuer:          viper.GetString("identity.issuer"),
			APIBaseURL:      viper.GetString("identity.api_base_url"),
			APISecretKey:    viper.GetString("identity.api_secret_key"),
			ProfileCacheTTL: viper.GetDuration("identity.profile_cache_ttl") * time.Second,
		},
		RateLimit: RateLimitConfig{
			Max:    viper.GetInt("rate_limit.max"),
			Window: viper.GetDuration("rate_limit.window") * time.Second,
		},
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if port := os.Getenv("DB_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.DB.Port = p
		}
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if secret := os.Getenv("IDENTITY_JWT_SECRET"); secret != "" {
		config.Identity.JWTSecret = secret
	}
	if pem := os.Getenv("IDENTITY_JWT_PUBLIC_KEY"); pem != "" {
		config.Identity.JWTPublicKeyPEM = pem
	}
	if apiKey := os.Getenv("IDENTITY_API_SECRET_KEY"); apiKey != "" {
		config.Identity.APISecretKey = apiKey
	}
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
}

// GetDSN renders a PostgreSQL connection URL for the pgx driver.
func (c *Config) GetDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DB.User, c.DB.Password),
		Host:   fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:   c.DB.DBName,
	}
	q := u.Query()
	if c.DB.SSLMode != "" {
		q.Set("sslmode", c.DB.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
