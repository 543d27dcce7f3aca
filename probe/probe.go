package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Pinger probes with a single ICMP echo and falls back to a TCP dial of
// FallbackPort when ICMP gets no answer. Best-effort: any error counts as
// unreachable.
type Pinger struct {
	Timeout      time.Duration
	FallbackPort int
	Privileged   bool
}

func NewPinger(timeout time.Duration, fallbackPort int) *Pinger {
	return &Pinger{
		Timeout:      timeout,
		FallbackPort: fallbackPort,
	}
}

func (p *Pinger) Probe(ctx context.Context, host string) bool {
	if p.icmpProbe(ctx, host) {
		return true
	}
	return p.tcpProbe(ctx, host)
}

func (p *Pinger) icmpProbe(ctx context.Context, host string) bool {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false
	}
	pinger.Count = 1
	pinger.Timeout = p.Timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

func (p *Pinger) tcpProbe(ctx context.Context, host string) bool {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(p.FallbackPort)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
