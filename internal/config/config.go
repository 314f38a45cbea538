// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// ServerURL is the base URL of the rent-estimate backend.
	ServerURL string

	// StorePath is the path of the local credential file.
	StorePath string

	// HealthInterval is the period between health checks.
	HealthInterval time.Duration

	// LogLevel sets the logger verbosity.
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.ServerURL, "url", "http://localhost:8000", "backend base URL")
	flag.StringVar(&options.StorePath, "store", "credentials.json", "path to the credential file")
	flag.DurationVar(&options.HealthInterval, "health-interval", 60*time.Second, "health poll period")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level: debug|info|warn|error")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverURL := os.Getenv("DUBLINRENT_URL"); serverURL != "" {
		options.ServerURL = serverURL
	}

	if storePath := os.Getenv("DUBLINRENT_STORE"); storePath != "" {
		options.StorePath = storePath
	}

	return options
}
