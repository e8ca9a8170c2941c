/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the service. These values
// are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	FriendshipEventExchange  string `mapstructure:"FRIENDSHIP_EVENT_EXCHANGE"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours       int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	LoginRateLimitPerMinute  int    `mapstructure:"LOGIN_RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	ServerReadTimeoutSeconds int    `mapstructure:"SERVER_READ_TIMEOUT_SECONDS"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("FRIENDSHIP_EVENT_EXCHANGE", "friendship_events")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "voyaj:rate_limit")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 24)
	viper.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("SERVER_READ_TIMEOUT_SECONDS", 15)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL", "DATABASE_URL", "MONGO_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("FRIENDSHIP_EVENT_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET", "JWT_SECRET", "JWT_SECRET_KEY")
	_ = viper.BindEnv("JWT_EXPIRATION_HOURS")
	_ = viper.BindEnv("LOGIN_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("SERVER_READ_TIMEOUT_SECONDS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.JWTSecret) == "" {
		config.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "voyaj:rate_limit"
	}
	config.FriendshipEventExchange = strings.TrimSpace(config.FriendshipEventExchange)
	if config.FriendshipEventExchange == "" {
		config.FriendshipEventExchange = "friendship_events"
	}

	if config.JWTExpirationHours <= 0 {
		config.JWTExpirationHours = 24
	}
	if config.LoginRateLimitPerMinute <= 0 {
		config.LoginRateLimitPerMinute = 10
	}
	if config.ServerReadTimeoutSeconds <= 0 {
		config.ServerReadTimeoutSeconds = 15
	}

	return
}
