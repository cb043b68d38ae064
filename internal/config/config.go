// Package config loads gowiki settings from defaults, an optional config file
// and GOWIKI_* environment variables.
package config

import (
	"io"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting of the application.
type Config struct {
	HTTP    HTTP
	DB      DB
	Session Session
	Log     Log
}

type HTTP struct {
	Addr            string
	Workers         int
	ShutdownTimeout time.Duration
}

type DB struct {
	URL            string
	Driver         string
	MaxPoolSize    int
	AcquireTimeout time.Duration
	QueriesFile    string
}

type Session struct {
	Key string
}

type Log struct {
	Level  string
	Format string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("gowiki")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.workers", 2)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.url", "file:wiki.db?_busy_timeout=5000")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.max_pool_size", 30)
	v.SetDefault("db.acquire_timeout", 5*time.Second)
	v.SetDefault("db.queries_file", "")

	v.SetDefault("session.key", "gowiki-development-session-key-change-me")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	return v
}

// Load reads the optional config file and returns the validated settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", file)
		}
	}

	cfg := Config{
		HTTP: HTTP{
			Addr:            v.GetString("http.addr"),
			Workers:         v.GetInt("http.workers"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		DB: DB{
			URL:            v.GetString("db.url"),
			Driver:         v.GetString("db.driver"),
			MaxPoolSize:    v.GetInt("db.max_pool_size"),
			AcquireTimeout: v.GetDuration("db.acquire_timeout"),
			QueriesFile:    v.GetString("db.queries_file"),
		},
		Session: Session{
			Key: v.GetString("session.key"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c Config) Validate() error {
	return validation.Errors{
		"http": validation.ValidateStruct(&c.HTTP,
			validation.Field(&c.HTTP.Addr, validation.Required),
			validation.Field(&c.HTTP.Workers, validation.Min(1)),
		),
		"db": validation.ValidateStruct(&c.DB,
			validation.Field(&c.DB.URL, validation.Required),
			validation.Field(&c.DB.Driver, validation.Required, validation.In("sqlite3", "postgres")),
			validation.Field(&c.DB.MaxPoolSize, validation.Min(1)),
		),
		"session": validation.ValidateStruct(&c.Session,
			validation.Field(&c.Session.Key, validation.Required, validation.Length(32, 0)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.Required, validation.By(func(value interface{}) error {
				_, err := logrus.ParseLevel(value.(string))
				return err
			})),
			validation.Field(&c.Log.Format, validation.In("text", "json")),
		),
	}.Filter()
}

// NewLogger builds the application logger.
func (l Log) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
