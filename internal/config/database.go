// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func (d *DatabaseConfig) Driver() string {
	if d.URL != "" {
		return DriverPostgres
	}
	return DriverSQLite
}

func (d *DatabaseConfig) DSN() string {
	if d.Driver() == DriverPostgres {
		// Heroku-style URLs still use the legacy scheme.
		if strings.HasPrefix(d.URL, "postgres://") {
			return "postgresql://" + strings.TrimPrefix(d.URL, "postgres://")
		}
		return d.URL
	}

	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", d.SQLitePath)
}
