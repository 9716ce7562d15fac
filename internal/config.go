package internal

import (
	"fmt"
	"net/url"
)

var defaultPorts = map[string]int{
	"postgres":  5432,
	"mysql":     3306,
	"sqlserver": 1433,
	"snowflake": 0,
}

// DatabaseConfig holds the connection settings when no URL is given.
type DatabaseConfig struct {
	URL      string
	Driver   string
	Hostname string
	Port     int
	Database string
	Username string
	Password string
}

// ConnectionURL returns the URL if set, otherwise one assembled from the individual fields.
func (c DatabaseConfig) ConnectionURL() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	driver := c.Driver
	if driver == "" {
		driver = "postgres"
	}
	defport, ok := defaultPorts[driver]
	if !ok {
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
	if c.Hostname == "" {
		return "", fmt.Errorf("required database url or hostname missing")
	}
	if c.Database == "" {
		return "", fmt.Errorf("required database name missing")
	}
	port := c.Port
	if port <= 0 {
		port = defport
	}
	var u url.URL
	u.Scheme = driver
	if c.Username != "" && c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	} else if c.Username != "" {
		u.User = url.User(c.Username)
	}
	if port > 0 {
		u.Host = fmt.Sprintf("%s:%d", c.Hostname, port)
	} else {
		u.Host = c.Hostname
	}
	u.Path = "/" + c.Database
	return u.String(), nil
}
