package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPageSize     = 500
	defaultWinRMPort    = 5985
	defaultWinRMTimeout = 60 * time.Second
)

// SweepConfiguration carries the credentials and endpoints for the two
// external services the sweep talks to: the domain controller (LDAP) and the
// per-host WinRM listeners.
type SweepConfiguration struct {
	BaseDN       string
	DcFQDN       string
	BindUser     string
	BindPassword string
	PageSize     uint32

	WinRMUser     string
	WinRMPassword string
	WinRMPort     int
	WinRMUseTLS   bool
	WinRMTimeout  time.Duration
}

// LoadEnvConfig reads configuration from an env file, falling back to the
// process environment when the file is absent.
func LoadEnvConfig(configName string) (SweepConfiguration, error) {
	if err := godotenv.Load(configName); err != nil && !os.IsNotExist(err) {
		return SweepConfiguration{}, fmt.Errorf("loading env file %s: %w", configName, err)
	}

	cfg := SweepConfiguration{
		BaseDN:        os.Getenv("LDAP_BASEDN"),
		DcFQDN:        os.Getenv("LDAP_DCFQDN"),
		BindUser:      os.Getenv("LDAP_USERNAME"),
		BindPassword:  os.Getenv("LDAP_PASSWORD"),
		PageSize:      defaultPageSize,
		WinRMUser:     os.Getenv("WINRM_USERNAME"),
		WinRMPassword: os.Getenv("WINRM_PASSWORD"),
		WinRMPort:     defaultWinRMPort,
		WinRMTimeout:  defaultWinRMTimeout,
	}

	if raw := os.Getenv("LDAP_PAGESIZE"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil || pageSize <= 0 {
			return SweepConfiguration{}, fmt.Errorf("invalid LDAP_PAGESIZE %q", raw)
		}
		cfg.PageSize = uint32(pageSize)
	}

	if raw := os.Getenv("WINRM_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return SweepConfiguration{}, fmt.Errorf("invalid WINRM_PORT %q", raw)
		}
		cfg.WinRMPort = port
	}

	if raw := os.Getenv("WINRM_HTTPS"); raw != "" {
		useTLS, err := strconv.ParseBool(raw)
		if err != nil {
			return SweepConfiguration{}, fmt.Errorf("invalid WINRM_HTTPS %q", raw)
		}
		cfg.WinRMUseTLS = useTLS
	}

	if raw := os.Getenv("WINRM_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return SweepConfiguration{}, fmt.Errorf("invalid WINRM_TIMEOUT_SECONDS %q", raw)
		}
		cfg.WinRMTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
