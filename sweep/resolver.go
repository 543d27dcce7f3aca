package sweep

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoComputers is returned when a resolution branch produces an empty host
// list. This is fatal for the run: no report files are written.
var ErrNoComputers = errors.New("unable to retrieve a list of computers")

// HostDirectory is the directory-service capability the resolver needs.
type HostDirectory interface {
	// ComputersMatching returns host names for computer accounts whose name
	// contains nameFragment, or every server account when the fragment is
	// empty, optionally scoped to the subtree ouDN.
	ComputersMatching(nameFragment, ouDN string) ([]string, error)
}

// ResolveTargets produces the ordered host list from the three optional
// inputs. The four branches are mutually exclusive:
//
//   - name filter only: directory search by name substring
//   - input file only: every line of the file, verbatim
//   - both: file lines containing the filter, case-insensitively
//   - neither: directory search for all server accounts
//
// Directory branches consult dir; file branches never touch it.
func ResolveTargets(dir HostDirectory, nameFilter, inputFile, ouDN string) ([]string, error) {
	var (
		hosts []string
		err   error
	)

	switch {
	case nameFilter != "" && inputFile == "":
		hosts, err = dir.ComputersMatching(nameFilter, ouDN)
		if err != nil {
			return nil, fmt.Errorf("directory search for %q: %w", nameFilter, err)
		}
	case nameFilter == "" && inputFile != "":
		hosts, err = readHostFile(inputFile)
		if err != nil {
			return nil, err
		}
	case nameFilter != "" && inputFile != "":
		lines, err := readHostFile(inputFile)
		if err != nil {
			return nil, err
		}
		needle := strings.ToLower(nameFilter)
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), needle) {
				hosts = append(hosts, line)
			}
		}
	default:
		hosts, err = dir.ComputersMatching("", ouDN)
		if err != nil {
			return nil, fmt.Errorf("directory search for servers: %w", err)
		}
	}

	if len(hosts) == 0 {
		return nil, ErrNoComputers
	}
	return hosts, nil
}

func readHostFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading host list %s: %w", path, err)
	}
	defer f.Close()

	var hosts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading host list %s: %w", path, err)
	}
	return hosts, nil
}
