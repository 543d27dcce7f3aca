package sweep

import (
	"context"
	"sort"
	"time"

	"github.com/opsrx/frsweep/logging"
)

// Status classifies the outcome of one host's processing step.
type Status int

const (
	// StatusOK means the host answered the query; Users may still be empty.
	StatusOK Status = iota
	// StatusUnreachable means the reachability probe got no answer.
	StatusUnreachable
	// StatusQueryFailed means the host was reachable but the remote log
	// query failed (access denied, service unavailable, transport error).
	StatusQueryFailed
)

// HostResult is the tagged outcome of processing one host. Failures are
// values, not escaping errors: a failed host never aborts the sweep.
type HostResult struct {
	Host    string
	Status  Status
	Users   []string
	Err     error
	Checked time.Time
}

// Prober reports whether a host is reachable. Best-effort, never errors.
type Prober interface {
	Probe(ctx context.Context, host string) bool
}

// Querier fetches the user names attached to qualifying Folder Redirection
// error events on one host. A reachable host with zero events returns an
// empty slice and nil error.
type Querier interface {
	QueryErrors(ctx context.Context, host string, window Window) ([]string, error)
}

// OfflineLog receives one entry per host that could not be swept. Entries
// are appended as they happen, not batched at the end.
type OfflineLog interface {
	NotOnline(host string, at time.Time) error
	AccessError(host string, at time.Time) error
}

// Accumulator is the run-wide unique-user set plus counters. The user set is
// re-sorted and re-deduplicated on every merge, so it is never observed with
// duplicates in it.
type Accumulator struct {
	users []string

	// TotalErrorCount is the running sum of each host's own distinct-user
	// count at merge time. Cross-host overlap means it can exceed the final
	// set size; it is diagnostic only and never written to the report body.
	TotalErrorCount int
}

// Merge folds one host's user names into the set: de-duplicates them
// locally, adds the distinct count to TotalErrorCount, merges into the
// global set and restores the sorted-unique invariant. Returns the host's
// distinct count.
func (a *Accumulator) Merge(names []string) int {
	distinct := dedupeSorted(names)
	a.TotalErrorCount += len(distinct)
	a.users = dedupeSorted(append(a.users, distinct...))
	return len(distinct)
}

// Users returns the current sorted, duplicate-free user list.
func (a *Accumulator) Users() []string {
	out := make([]string, len(a.users))
	copy(out, a.users)
	return out
}

func dedupeSorted(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, name := range sorted {
		if i == 0 || name != sorted[i-1] {
			out = append(out, name)
		}
	}
	return out
}

// Summary is what one full sweep produced.
type Summary struct {
	HostsProcessed   int
	HostsUnreachable int
	QueryFailures    int
	UniqueUsers      []string
	TotalErrorCount  int
}

// Run processes every host in order, one at a time. Unreachable hosts and
// failed queries go to the offline log and the sweep moves on; only the
// accumulated result comes back.
func Run(ctx context.Context, hosts []string, window Window, prober Prober, querier Querier, offline OfflineLog, log *logging.Logger) Summary {
	var (
		acc     Accumulator
		summary Summary
	)

	for _, host := range hosts {
		result := processHost(ctx, host, window, prober, querier)
		summary.HostsProcessed++

		switch result.Status {
		case StatusUnreachable:
			summary.HostsUnreachable++
			log.Warn("host not online", "host", host)
			if err := offline.NotOnline(host, result.Checked); err != nil {
				log.Error("writing offline log entry", "host", host, "error", err)
			}
		case StatusQueryFailed:
			summary.QueryFailures++
			log.Warn("error accessing host event log", "host", host, "error", result.Err)
			if err := offline.AccessError(host, result.Checked); err != nil {
				log.Error("writing offline log entry", "host", host, "error", err)
			}
		case StatusOK:
			if len(result.Users) == 0 {
				log.Info("no Folder Redirection errors found", "host", host)
				continue
			}
			distinct := acc.Merge(result.Users)
			log.Info("Folder Redirection errors found",
				"host", host,
				"affected_users", distinct,
				"running_total", acc.TotalErrorCount)
		}
	}

	summary.UniqueUsers = acc.Users()
	summary.TotalErrorCount = acc.TotalErrorCount
	return summary
}

func processHost(ctx context.Context, host string, window Window, prober Prober, querier Querier) HostResult {
	result := HostResult{Host: host, Checked: time.Now()}

	if !prober.Probe(ctx, host) {
		result.Status = StatusUnreachable
		return result
	}

	users, err := querier.QueryErrors(ctx, host, window)
	if err != nil {
		result.Status = StatusQueryFailed
		result.Err = err
		return result
	}

	result.Status = StatusOK
	result.Users = users
	return result
}
