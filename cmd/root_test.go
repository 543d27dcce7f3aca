package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsrx/frsweep/report"
	"github.com/opsrx/frsweep/sweep"
)

func TestRun_EmptyInputFileAbortsBeforeWritingReports(t *testing.T) {
	dir := t.TempDir()
	hostList := filepath.Join(dir, "hosts.txt")
	if err := os.WriteFile(hostList, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"--input-file", hostList, "--folder", dir})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for empty host list")
	}
	if !errors.Is(err, sweep.ErrNoComputers) {
		t.Errorf("got %v, want ErrNoComputers", err)
	}

	// An aborted resolution must leave no report files behind.
	for _, name := range []string{report.ErrorsFileName, report.OfflineFileName} {
		if _, statErr := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(statErr) {
			t.Errorf("%s exists after aborted run", name)
		}
	}
}

func TestParseTimeFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2017-04-01", want: time.Date(2017, 4, 1, 0, 0, 0, 0, time.Local)},
		{input: "2017-04-01 15:04:05", want: time.Date(2017, 4, 1, 15, 4, 5, 0, time.Local)},
		{input: "04/01/2017", wantErr: true},
		{input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeFlag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckFolder(t *testing.T) {
	dir := t.TempDir()

	t.Run("existing directory", func(t *testing.T) {
		got, err := checkFolder(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != dir {
			t.Errorf("got %q, want %q", got, dir)
		}
	})

	t.Run("trailing separator is normalized", func(t *testing.T) {
		got, err := checkFolder(dir + string(os.PathSeparator))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != dir {
			t.Errorf("got %q, want %q", got, dir)
		}
	})

	t.Run("missing folder is fatal", func(t *testing.T) {
		if _, err := checkFolder(filepath.Join(dir, "absent")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("file instead of directory is fatal", func(t *testing.T) {
		file := filepath.Join(dir, "report.txt")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := checkFolder(file); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCheckInputFile(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "hosts.txt")
	if err := os.WriteFile(file, []byte("RDS01\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := checkInputFile(file); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkInputFile(filepath.Join(dir, "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if err := checkInputFile(dir); err == nil {
		t.Error("expected error for directory")
	}
}
