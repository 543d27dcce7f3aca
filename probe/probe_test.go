package probe

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestProbe_TCPFallbackReachesListener(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	p := NewPinger(500*time.Millisecond, port)

	if !p.Probe(context.Background(), "127.0.0.1") {
		t.Error("expected localhost with open port to be reachable")
	}
}

func TestProbe_ClosedPortIsUnreachable(t *testing.T) {
	// Grab a free port and close it again so nothing answers.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	p := NewPinger(500*time.Millisecond, port)

	if p.tcpProbe(context.Background(), "127.0.0.1") {
		t.Errorf("expected closed port %s to be unreachable", strconv.Itoa(port))
	}
}

func TestProbe_UnresolvableHostIsUnreachable(t *testing.T) {
	p := NewPinger(500*time.Millisecond, 5985)

	if p.Probe(context.Background(), "frsweep-no-such-host.invalid") {
		t.Error("expected unresolvable host to be unreachable")
	}
}
