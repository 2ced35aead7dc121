package commands

import (
	"fmt"
	"log/slog"
	"os"
	"slc-balance/internal/components/telemetry"
	"slc-balance/internal/notify"
	"slc-balance/internal/scrapers/slc"
	"slc-balance/pkg/configutil"
	"slc-balance/pkg/restyutil"
	"time"

	"golang.org/x/term"
)

type Config struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	SecretAnswer string `json:"secret_answer"`
	// InsecureSecretAnswer skips certificate verification for the secret
	// answer submission only.
	InsecureSecretAnswer bool               `json:"insecure_secret_answer"`
	TimeoutSeconds       int                `json:"timeout_seconds"`
	Email                notify.EmailConfig `json:"email"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", configPath, err)
	}
	if cfg.Username == "" {
		return cfg, fmt.Errorf("config %s: username is not set", configPath)
	}
	return cfg, nil
}

// promptSecret reads a value from the terminal without echoing it.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s is not configured and stdin is not a terminal", label)
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func credentials(cfg Config) (slc.Credentials, error) {
	creds := slc.Credentials{
		Username:     cfg.Username,
		Password:     cfg.Password,
		SecretAnswer: cfg.SecretAnswer,
	}

	var err error
	if creds.Password == "" {
		creds.Password, err = promptSecret("Password")
		if err != nil {
			return creds, err
		}
	}
	if creds.SecretAnswer == "" {
		creds.SecretAnswer, err = promptSecret("Secret answer")
		if err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func newClient(cfg Config) (*slc.Client, error) {
	opts := slc.ClientOptions{
		Timeout:              time.Duration(cfg.TimeoutSeconds) * time.Second,
		InsecureSecretAnswer: cfg.InsecureSecretAnswer,
	}
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, fmt.Errorf("prepare dump directory: %w", err)
		}
		slog.Info("dumping http exchanges", "dir", output.Directory())
		opts.HttpOutput = output
	}
	return slc.NewClient(opts, telemetry.SlogAPI{})
}
