// Package report owns the two plain-text artifacts a sweep leaves behind.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ErrorsFileName holds the unique affected-user list, or the sentinel.
	ErrorsFileName = "FolderRedirectionErrors.txt"
	// OfflineFileName holds one line per host that could not be swept.
	OfflineFileName = "FROfflineServers.txt"

	// Sentinel is written verbatim when the sweep found no errors at all.
	Sentinel = "No Folder Redirection errors were found"
)

const stampLayout = "2006-01-02 15:04:05"

// Writer appends to the two report files for the duration of one run.
// Not safe for concurrent use; the sweep is sequential by contract.
type Writer struct {
	errors  *os.File
	offline *os.File
}

// Open creates both report files, truncating any previous run's output, and
// writes the run-start header line to each. A trailing separator on folder
// is tolerated.
func Open(folder string, startedAt time.Time) (*Writer, error) {
	folder = filepath.Clean(folder)
	header := fmt.Sprintf("Run started %s\n", startedAt.Format(stampLayout))

	errorsFile, err := os.Create(filepath.Join(folder, ErrorsFileName))
	if err != nil {
		return nil, fmt.Errorf("creating report file: %w", err)
	}
	offlineFile, err := os.Create(filepath.Join(folder, OfflineFileName))
	if err != nil {
		errorsFile.Close()
		return nil, fmt.Errorf("creating offline log file: %w", err)
	}

	w := &Writer{errors: errorsFile, offline: offlineFile}
	if _, err := errorsFile.WriteString(header); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing report header: %w", err)
	}
	if _, err := offlineFile.WriteString(header); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing offline log header: %w", err)
	}
	return w, nil
}

// NotOnline records a host that failed the reachability probe.
func (w *Writer) NotOnline(host string, at time.Time) error {
	_, err := fmt.Fprintf(w.offline, "Computer %s was not online %s\n", host, at.Format(stampLayout))
	return err
}

// AccessError records a host whose remote log query failed.
func (w *Writer) AccessError(host string, at time.Time) error {
	_, err := fmt.Fprintf(w.offline, "Server %s had error being accessed %s\n", host, at.Format(stampLayout))
	return err
}

// WriteUsers finalizes the primary report: the user list when any host
// reported errors, the sentinel line otherwise. users is expected sorted
// and duplicate-free; the writer does not re-check.
func (w *Writer) WriteUsers(users []string, totalErrorCount int) error {
	if totalErrorCount == 0 {
		if _, err := fmt.Fprintln(w.errors, Sentinel); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}
	for _, user := range users {
		if _, err := fmt.Fprintln(w.errors, user); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

func (w *Writer) Close() error {
	errErrors := w.errors.Close()
	errOffline := w.offline.Close()
	if errErrors != nil {
		return errErrors
	}
	return errOffline
}
