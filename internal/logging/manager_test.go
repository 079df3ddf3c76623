package logging

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func newTestManager(t *testing.T, mutate func(*Options)) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ErrOut = &buf
	if mutate != nil {
		mutate(&opts)
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, &buf
}

func TestLevelRouting(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) {
		o.Level = LevelVerbose
	})

	levels := []Level{LevelVerbose, LevelInfo, LevelWarning, LevelError}
	counts := map[Level]int{}
	// The manager is never started, so submissions stay queued and the
	// routing decision is observable.
	for i := 0; i < 1000; i++ {
		level := levels[rand.Intn(len(levels))]
		counts[level]++
		m.Log(level, "routing probe", "test", nil)
	}

	drain := func(queue chan *Event) map[Level]int {
		got := map[Level]int{}
		for {
			select {
			case ev := <-queue:
				got[ev.Level]++
			default:
				return got
			}
		}
	}

	high := drain(m.high)
	low := drain(m.low)

	if high[LevelVerbose] != 0 || high[LevelInfo] != 0 {
		t.Fatalf("low-severity events reached the high queue: %v", high)
	}
	if low[LevelWarning] != 0 || low[LevelError] != 0 {
		t.Fatalf("high-severity events reached the low queue: %v", low)
	}
	if high[LevelWarning] != counts[LevelWarning] || high[LevelError] != counts[LevelError] {
		t.Fatalf("high queue counts %v, submitted %v", high, counts)
	}
	if low[LevelVerbose] != counts[LevelVerbose] || low[LevelInfo] != counts[LevelInfo] {
		t.Fatalf("low queue counts %v, submitted %v", low, counts)
	}
}

func TestQueueOrderIsFIFO(t *testing.T) {
	m, _ := newTestManager(t, nil)

	for i := 0; i < 50; i++ {
		m.Info(fmt.Sprintf("low %03d", i), "test", nil)
		m.Error(fmt.Sprintf("high %03d", i), "test", nil)
	}

	for i := 0; i < 50; i++ {
		low := <-m.low
		if want := fmt.Sprintf("low %03d", i); low.Message != want {
			t.Fatalf("low queue out of order: got %q, want %q", low.Message, want)
		}
		high := <-m.high
		if want := fmt.Sprintf("high %03d", i); high.Message != want {
			t.Fatalf("high queue out of order: got %q, want %q", high.Message, want)
		}
	}
}

func TestBelowThresholdAllocatesNothing(t *testing.T) {
	m, buf := newTestManager(t, func(o *Options) {
		o.Level = LevelWarning
	})

	m.Verbose("ignored", "test", nil)
	m.Info("ignored", "test", nil)

	if len(m.high) != 0 || len(m.low) != 0 {
		t.Fatal("filtered events must not be queued")
	}
	if buf.Len() != 0 {
		t.Fatalf("filtered events must produce no output, got %q", buf.String())
	}
}

func TestHighQueueSaturationFallsBackToErrorConsole(t *testing.T) {
	m, buf := newTestManager(t, nil)

	for i := 0; i < highQueueCapacity; i++ {
		m.Warning("filler", "test", nil)
	}
	if len(m.high) != highQueueCapacity {
		t.Fatalf("expected saturated high queue, len=%d", len(m.high))
	}

	m.Error("must not be lost", "test", nil)

	out := buf.String()
	if !strings.Contains(out, "high priority log queue full") {
		t.Fatalf("expected queue-full report, got %q", out)
	}
	if !strings.Contains(out, "must not be lost") {
		t.Fatalf("expected event text on the error console, got %q", out)
	}
}

func TestLowQueueSaturationDropsAndCounts(t *testing.T) {
	m, buf := newTestManager(t, nil)

	for i := 0; i < lowQueueCapacity+7; i++ {
		m.Info("flood", "test", nil)
	}

	if got := m.Dropped(); got != 7 {
		t.Fatalf("Dropped() = %d, want 7", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("low-priority drops must be silent, got %q", buf.String())
	}
}

func TestNewManagerRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSize = -1
	if _, err := NewManager(opts); err == nil {
		t.Fatal("expected error for negative max size")
	}

	opts = DefaultOptions()
	opts.BackupCount = 0
	if _, err := NewManager(opts); err == nil {
		t.Fatal("expected error for zero backup count")
	}
}

func TestDefaultLogFileDerivedFromDir(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) {
		o.ServiceName = "worker"
		o.LogDir = "/tmp/modkit-test-logs"
	})
	if got := m.LogPath(); !strings.HasSuffix(got, "worker.log") {
		t.Fatalf("LogPath() = %q, want <dir>/worker.log", got)
	}
}

func TestExceptionCapturesTypeAndTrace(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Exception(errFake{}, "operation failed", "test")

	select {
	case ev := <-m.high:
		if ev.Level != LevelError {
			t.Fatalf("exception logged at %v", ev.Level)
		}
		if ev.Context["exception_type"] != "logging.errFake" {
			t.Fatalf("exception_type = %v", ev.Context["exception_type"])
		}
		trace, _ := ev.Context["traceback"].(string)
		if !strings.Contains(trace, "goroutine") {
			t.Fatalf("expected a stack trace, got %q", trace)
		}
		if !strings.Contains(ev.Message, "operation failed") {
			t.Fatalf("message = %q", ev.Message)
		}
		if !strings.Contains(ev.Function, "TestExceptionCapturesTypeAndTrace") {
			t.Fatalf("Function = %q, want the calling test's frame", ev.Function)
		}
	default:
		t.Fatal("exception event not queued")
	}
}

func TestComponentExceptionReportsCallerFrame(t *testing.T) {
	m, _ := newTestManager(t, nil)
	logger := NewComponentLogger(m, "test")

	logger.Exception(errFake{}, "operation failed")

	select {
	case ev := <-m.high:
		if !strings.Contains(ev.Function, "TestComponentExceptionReportsCallerFrame") {
			t.Fatalf("Function = %q, want the calling test's frame", ev.Function)
		}
		if ev.Context["exception_type"] != "logging.errFake" {
			t.Fatalf("exception_type = %v", ev.Context["exception_type"])
		}
	default:
		t.Fatal("exception event not queued")
	}
}

func TestPendingCountersTrackQueueDepth(t *testing.T) {
	m, _ := newTestManager(t, nil)

	for i := 0; i < 10; i++ {
		m.Error("queued", "test", nil)
		m.Info("queued", "test", nil)
	}
	if got := m.highPending.Load(); got != 10 {
		t.Fatalf("highPending = %d, want 10", got)
	}
	if got := m.lowPending.Load(); got != 10 {
		t.Fatalf("lowPending = %d, want 10", got)
	}

	// Overflowed submissions take the fallback and drop paths; the counters
	// must not keep their increments.
	for i := 10; i < highQueueCapacity+5; i++ {
		m.Warning("filler", "test", nil)
	}
	for i := 10; i < lowQueueCapacity+5; i++ {
		m.Info("flood", "test", nil)
	}
	if got := m.highPending.Load(); got != highQueueCapacity {
		t.Fatalf("highPending = %d, want %d after overflow", got, highQueueCapacity)
	}
	if got := m.lowPending.Load(); got != lowQueueCapacity {
		t.Fatalf("lowPending = %d, want %d after overflow", got, lowQueueCapacity)
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake failure" }
