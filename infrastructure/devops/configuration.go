package devops

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const ParameterName = "databases"

type DBEntry struct {
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"host" json:"host"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// GetDSN builds a DSN for the driver without a schema when dbname is empty.
func (db DBEntry) GetDSN(driver, dbname string) string {
	host, port, err := net.SplitHostPort(db.Host)
	if err != nil {
		host = db.Host
		port = ""
	}
	switch driver {
	case "postgres":
		if port == "" {
			port = "5432"
		}
		if dbname == "" {
			dbname = "postgres"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require", host, port, db.Username, db.Password, dbname)
	default:
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", db.Username, db.Password, net.JoinHostPort(host, port), dbname)
	}
}

var (
	once    sync.Once
	dbList  []DBEntry
	loadErr error
)

// LoadDBConfig reads the SSM parameter once per process.
func LoadDBConfig(ctx context.Context) ([]DBEntry, error) {
	once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(ParameterName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			loadErr = fmt.Errorf("parameter %s is empty", ParameterName)
			return
		}

		dbList, loadErr = ParseDBConfig([]byte(*out.Parameter.Value))
	})

	return dbList, loadErr
}

func ParseDBConfig(data []byte) ([]DBEntry, error) {
	var parsed []DBEntry
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return parsed, nil
}

// Lookup finds the entry for an environment name, case-insensitively.
func Lookup(entries []DBEntry, env string) (DBEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Name, env) {
			return e, true
		}
	}
	return DBEntry{}, false
}

// ResolveDSN loads the SSM parameter and builds the server-level DSN for env.
func ResolveDSN(ctx context.Context, driver, env string) (string, error) {
	entries, err := LoadDBConfig(ctx)
	if err != nil {
		return "", err
	}
	entry, ok := Lookup(entries, env)
	if !ok {
		return "", fmt.Errorf("no database entry for environment %q", env)
	}
	return entry.GetDSN(driver, ""), nil
}
