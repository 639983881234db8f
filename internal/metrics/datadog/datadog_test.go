package datadog

import (
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"csvselect/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend(empty) error = nil; want error")
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v; want nil", got)
	}
	got := labelsToTags(metrics.Labels{"stage": "reading", "job": "j", "status": "success"})
	want := []string{"job:j", "stage:reading", "status:success"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags() = %v; want %v", got, want)
	}
}

func TestZeroBackendIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.RowsTotal, 1, nil)
	b.ObserveHistogram(metrics.StageDuration, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
}

// TestBackend_SendsDogStatsD listens on a local UDP socket standing in for
// the agent and checks the wire lines.
func TestBackend_SendsDogStatsD(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Namespace: "app.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"job": "j", "kind": "read"})
	b.ObserveHistogram(metrics.StageDuration, 1.5, metrics.Labels{"stage": "writing"})
	b.ObserveHistogram("csvselect_row_width", 3, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got strings.Builder
	buf := make([]byte, 65536)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			break
		}
		got.Write(buf[:n])
		got.WriteByte('\n')
		s := got.String()
		if strings.Contains(s, "|c") && strings.Contains(s, "|d") && strings.Contains(s, "|h") {
			break
		}
	}

	out := got.String()
	for _, want := range []string{
		"app." + metrics.RowsTotal + ":5|c",
		"app." + metrics.StageDuration + ":1.5|d",
		"app.csvselect_row_width:3|h",
		"env:test",
		"job:j,kind:read",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("packets %q do not contain %q", out, want)
		}
	}
}
