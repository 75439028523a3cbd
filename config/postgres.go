package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// PostgresConfig defines the connection to the daily bar warehouse.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN builds the libpq connection string. In prod the host and credentials
// come from SSM Parameter Store instead of the config file.
func (cfg *PostgresConfig) DSN(env string) string {
	host, user, password := cfg.credentials(env)
	return cfg.dsn(host, user, password, cfg.DBName)
}

// AdminDSN points at the server's maintenance database, used to create DBName.
func (cfg *PostgresConfig) AdminDSN(env string) string {
	host, user, password := cfg.credentials(env)
	return cfg.dsn(host, user, password, "postgres")
}

func (cfg *PostgresConfig) credentials(env string) (host, user, password string) {
	if env == "prod" {
		return getParameterStoreValue("STOCKCHART_WAREHOUSE_DB_HOST", true),
			getParameterStoreValue("STOCKCHART_WAREHOUSE_DB_USER", true),
			getParameterStoreValue("STOCKCHART_WAREHOUSE_DB_PASSWORD", true)
	}
	return cfg.Host, cfg.User, cfg.Password
}

// dsn quotes every value so empty or space-containing fields stay intact.
func (cfg *PostgresConfig) dsn(host, user, password, dbName string) string {
	parts := []string{
		"host=" + quoteDSNValue(host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quoteDSNValue(user),
		"password=" + quoteDSNValue(password),
		"dbname=" + quoteDSNValue(dbName),
		"sslmode=" + quoteDSNValue(cfg.SSLMode),
	}
	if cfg.TimeZone != "" {
		parts = append(parts, "TimeZone="+quoteDSNValue(cfg.TimeZone))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

func getParameterStoreValue(parameterName string, decrypt bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return ""
	}

	client := ssm.NewFromConfig(cfg)

	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return ""
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return ""
	}

	return *result.Parameter.Value
}
