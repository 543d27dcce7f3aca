// Package eventlog queries a remote host's application event log for Folder
// Redirection error events over WinRM.
package eventlog

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/masterzen/winrm"

	"github.com/opsrx/frsweep/sweep"
)

// ProviderName is the event source Folder Redirection failures are logged
// under in the Application log.
const ProviderName = "Microsoft-Windows-Folder Redirection"

const timeLayout = "2006-01-02T15:04:05"

// WinRMQuerier runs a Get-WinEvent pipeline on the target host and collects
// the account name behind each qualifying event, one per output line.
type WinRMQuerier struct {
	User     string
	Password string
	Port     int
	UseTLS   bool
	Timeout  time.Duration
}

func NewWinRMQuerier(user, password string, port int, useTLS bool, timeout time.Duration) *WinRMQuerier {
	return &WinRMQuerier{
		User:     user,
		Password: password,
		Port:     port,
		UseTLS:   useTLS,
		Timeout:  timeout,
	}
}

// QueryErrors fetches the user names attached to Folder Redirection error
// events on host within window. Zero matching events is a success with an
// empty result; any transport or remote failure is returned as an error.
func (q *WinRMQuerier) QueryErrors(ctx context.Context, host string, window sweep.Window) ([]string, error) {
	endpoint := winrm.NewEndpoint(host, q.Port, q.UseTLS, true, nil, nil, nil, q.Timeout)
	client, err := winrm.NewClient(endpoint, q.User, q.Password)
	if err != nil {
		return nil, fmt.Errorf("creating WinRM client for %s: %w", host, err)
	}

	var stdout, stderr bytes.Buffer
	exitCode, err := client.RunWithContext(ctx, queryCommand(window), &stdout, &stderr)
	if err != nil {
		return nil, fmt.Errorf("querying event log on %s: %w", host, err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("event log query on %s exited %d: %s",
			host, exitCode, strings.TrimSpace(stderr.String()))
	}

	return parseUserLines(stdout.String()), nil
}

// queryCommand builds the remote PowerShell pipeline. The hashtable filter
// is applied by the event log service itself, so only qualifying events come
// back; StartTime and EndTime are inclusive bounds. Each event's recorded
// SID is translated to an account name, falling back to the raw SID when
// the account no longer resolves.
func queryCommand(window sweep.Window) string {
	script := fmt.Sprintf(
		"Get-WinEvent -FilterHashtable @{LogName='Application';ProviderName='%s';Level=2;StartTime='%s';EndTime='%s'} -ErrorAction SilentlyContinue"+
			" | ForEach-Object { if ($_.UserId) { try { $_.UserId.Translate([System.Security.Principal.NTAccount]).Value } catch { $_.UserId.Value } } }",
		ProviderName,
		window.Start.Format(timeLayout),
		window.End.Format(timeLayout),
	)
	return `powershell.exe -NoProfile -NonInteractive -Command "` + script + `"`
}

// parseUserLines splits the remote output into user names, dropping blank
// lines and CRLF artifacts. Duplicates are kept: de-duplication belongs to
// the sweep accumulator.
func parseUserLines(output string) []string {
	var users []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		users = append(users, line)
	}
	return users
}
