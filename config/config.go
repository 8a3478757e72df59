// Package config loads settings from defaults, an optional .env file and
// OJT_-prefixed environment variables (http.addr -> OJT_HTTP_ADDR).
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	HTTPAddr string
	Timezone string

	DB struct {
		Driver         string
		DSN            string
		MaxConnections int
		LogLevel       string
		TenantsFromSSM bool
		SSMEnv         string
	}

	JWTSecret string

	ProofS3Bucket string

	Mail struct {
		From    string
		Enabled bool
	}

	Slack struct {
		Token        string
		InfoChannel  string
		ErrorChannel string
	}

	RedisAddr    string
	ProfileTTL   time.Duration
	RollbarToken string

	Retention struct {
		Days   int
		Cron   string
		DryRun bool
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("env", "development")
	v.SetDefault("http.addr", "0.0.0.0:8090")
	v.SetDefault("timezone", "Asia/Manila")
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "root:development@tcp(localhost:3306)/ojt_dev?parseTime=true")
	v.SetDefault("db.maxConnections", 10)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("db.tenantsFromSSM", false)
	v.SetDefault("db.ssmEnv", "dev")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("proof.s3Bucket", "")
	v.SetDefault("mail.from", "noreply@ojt.example.net")
	v.SetDefault("mail.enabled", false)
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.infoChannel", "")
	v.SetDefault("slack.errorChannel", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.profileTTL", 10*time.Minute)
	v.SetDefault("rollbar.token", "")
	v.SetDefault("retention.days", 365)
	v.SetDefault("retention.cron", "0 2 * * *")
	v.SetDefault("retention.dryRun", true)

	v.SetEnvPrefix("OJT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads dotEnvPath when it exists and then the environment.
func Load(dotEnvPath string) (*Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
		}
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{}
	c.Env = v.GetString("env")
	c.HTTPAddr = v.GetString("http.addr")
	c.Timezone = v.GetString("timezone")
	c.DB.Driver = strings.ToLower(v.GetString("db.driver"))
	c.DB.DSN = v.GetString("db.dsn")
	c.DB.MaxConnections = v.GetInt("db.maxConnections")
	c.DB.LogLevel = v.GetString("db.logLevel")
	c.DB.TenantsFromSSM = v.GetBool("db.tenantsFromSSM")
	c.DB.SSMEnv = v.GetString("db.ssmEnv")
	c.JWTSecret = v.GetString("jwt.secret")
	c.ProofS3Bucket = v.GetString("proof.s3Bucket")
	c.Mail.From = v.GetString("mail.from")
	c.Mail.Enabled = v.GetBool("mail.enabled")
	c.Slack.Token = v.GetString("slack.token")
	c.Slack.InfoChannel = v.GetString("slack.infoChannel")
	c.Slack.ErrorChannel = v.GetString("slack.errorChannel")
	c.RedisAddr = v.GetString("redis.addr")
	c.ProfileTTL = v.GetDuration("redis.profileTTL")
	c.RollbarToken = v.GetString("rollbar.token")
	c.Retention.Days = v.GetInt("retention.days")
	c.Retention.Cron = v.GetString("retention.cron")
	c.Retention.DryRun = v.GetBool("retention.dryRun")

	switch c.DB.Driver {
	case "mysql", "postgres", "inmem":
	default:
		return nil, fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	return c, nil
}

// MustLoad is Load for main packages.
func MustLoad(dotEnvPath string) *Config {
	c, err := Load(dotEnvPath)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
