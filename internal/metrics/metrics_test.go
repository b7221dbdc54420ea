package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResult(t *testing.T) {
	if Result(nil) != "ok" {
		t.Errorf("expected ok, got %q", Result(nil))
	}
	if Result(errors.New("boom")) != "error" {
		t.Errorf("expected error, got %q", Result(errors.New("boom")))
	}
}

func TestCountersIncrement(t *testing.T) {
	c := AutosaveFlushes.WithLabelValues("ok")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}
