package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3001"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // generating a schedule waits on every calendar feed
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		MigrateOnStart     bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"Administrator"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // hours, 14 days
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host               string `env:"HOST" envDefault:"localhost"`
		Port               int    `env:"PORT" envDefault:"6379"`
		Password           string `env:"PASSWORD"`
		OperationTimeout   int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
		ScheduleExpiration int    `env:"SCHEDULE_EXPIRATION" envDefault:"600"` // seconds
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // seconds
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Scheduler struct {
		ConfidenceThreshold  float64 `env:"CONFIDENCE_THRESHOLD" envDefault:"0.9"`
		CaseInsensitiveMatch bool    `env:"CASE_INSENSITIVE_MATCH" envDefault:"true"`
		TimeZone             string  `env:"TIME_ZONE" envDefault:"America/New_York"`
	} `envPrefix:"SCHEDULER_"`
	Calendar struct {
		FetchTimeout int   `env:"FETCH_TIMEOUT" envDefault:"30"`
		MaxFeedSize  int64 `env:"MAX_FEED_SIZE" envDefault:"5242880"` // 5MB
		FeedCacheTTL int   `env:"FEED_CACHE_TTL" envDefault:"120"`
	} `envPrefix:"CALENDAR_"`
	Archive struct {
		Enabled   bool   `env:"ENABLED" envDefault:"false"`
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"ulc-schedules"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
		Timeout   int    `env:"TIMEOUT" envDefault:"10"`
	} `envPrefix:"ARCHIVE_"`
}

func LoadConfig() (*Config, error) {
	// .env is optional, the process environment wins either way
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// SchedulerLocation loads the time zone weekdays and staging weeks are computed in.
func (c *Config) SchedulerLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler time zone %q: %w", c.Scheduler.TimeZone, err)
	}
	return loc, nil
}
