package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const (
	highQueueCapacity = 1000
	lowQueueCapacity  = 9000

	// highDrainTimeout bounds how long Stop waits for queued high-priority
	// events to be written before workers are cancelled outright.
	highDrainTimeout = 2 * time.Second
)

// Options describes Manager construction parameters. Start from
// DefaultOptions and override; a file sink is configured only when LogFile
// or LogDir is set.
type Options struct {
	ServiceName     string
	Level           Level
	LogDir          string
	LogFile         string
	MaxSize         int64
	BackupCount     int
	JSONFormat      bool
	ConsoleOutput   bool
	Format          string
	TimestampFormat string

	// ErrOut receives console output and internal failure reports. Defaults
	// to os.Stderr; tests inject a buffer here.
	ErrOut io.Writer
}

// DefaultOptions returns the documented defaults: service "service", INFO
// threshold, 10 MiB rotation threshold, five retained backups, text format,
// console output enabled, no file sink.
func DefaultOptions() Options {
	return Options{
		ServiceName:     "service",
		Level:           LevelInfo,
		MaxSize:         10 * 1024 * 1024,
		BackupCount:     5,
		ConsoleOutput:   true,
		Format:          DefaultFormat,
		TimestampFormat: DefaultTimestampFormat,
	}
}

// Manager is the asynchronous log pipeline: it filters submissions by level,
// routes events to one of two bounded priority queues, and owns the writer
// workers and the rotation monitor that drain them.
type Manager struct {
	serviceName     string
	level           Level
	jsonFormat      bool
	consoleOutput   bool
	format          string
	timestampFormat string
	maxSize         int64
	backupCount     int

	logDir     string
	logPath    string
	archiveDir string

	high chan *Event
	low  chan *Event

	highPending atomic.Int64
	lowPending  atomic.Int64
	dropped     atomic.Uint64

	// mu guards the file handle so a write and a rotation can never
	// interleave; workers and the monitor run on real OS threads.
	mu   sync.Mutex
	file *os.File

	errMu  sync.Mutex
	errOut io.Writer

	stateMu  sync.Mutex
	started  bool
	stopped  bool
	shutdown chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewManager validates the options and builds a stopped Manager. Call Start
// to open the file sink and launch the workers.
func NewManager(opts Options) (*Manager, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "service"
	}
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrConfig, opts.MaxSize)
	}
	if opts.BackupCount < 1 {
		return nil, fmt.Errorf("%w: backup count must be at least 1, got %d", ErrConfig, opts.BackupCount)
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = DefaultTimestampFormat
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}

	logDir := opts.LogDir
	logPath := opts.LogFile
	if logPath == "" && logDir != "" {
		logPath = filepath.Join(logDir, opts.ServiceName+".log")
	}
	if logPath != "" && logDir == "" {
		logDir = filepath.Dir(logPath)
	}

	m := &Manager{
		serviceName:     opts.ServiceName,
		level:           opts.Level,
		jsonFormat:      opts.JSONFormat,
		consoleOutput:   opts.ConsoleOutput,
		format:          opts.Format,
		timestampFormat: opts.TimestampFormat,
		maxSize:         opts.MaxSize,
		backupCount:     opts.BackupCount,
		logDir:          logDir,
		logPath:         logPath,
		high:            make(chan *Event, highQueueCapacity),
		low:             make(chan *Event, lowQueueCapacity),
		errOut:          opts.ErrOut,
		shutdown:        make(chan struct{}),
	}
	if logDir != "" {
		m.archiveDir = filepath.Join(logDir, "archive")
	}
	return m, nil
}

// ServiceName reports the service identity stamped on every event.
func (m *Manager) ServiceName() string { return m.serviceName }

// LogPath returns the live log file path, empty when no file sink is
// configured.
func (m *Manager) LogPath() string { return m.logPath }

// Dropped reports how many low-priority events were discarded because their
// queue was full.
func (m *Manager) Dropped() uint64 { return m.dropped.Load() }

// Start opens the file sink, creates the archive directory, and launches the
// writer workers and the rotation monitor. Calling Start on a running or
// stopped manager is a no-op; a manager is not restartable.
func (m *Manager) Start(ctx context.Context) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.started || m.stopped {
		return nil
	}

	if m.logPath != "" {
		if err := os.MkdirAll(m.logDir, 0o755); err != nil {
			return fmt.Errorf("%w: create log directory %q: %w", ErrLogFile, m.logDir, err)
		}
		if err := os.MkdirAll(m.archiveDir, 0o755); err != nil {
			return fmt.Errorf("%w: create archive directory %q: %w", ErrLogFile, m.archiveDir, err)
		}
		file, err := os.OpenFile(m.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("%w: open log file %q: %w", ErrLogFile, m.logPath, err)
		}
		m.mu.Lock()
		m.file = file
		m.mu.Unlock()
	}

	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.started = true

	m.wg.Add(2)
	go m.runWorker(workerCtx, m.high, &m.highPending)
	go m.runWorker(workerCtx, m.low, &m.lowPending)
	if m.logPath != "" {
		m.wg.Add(1)
		go m.runMonitor(workerCtx)
	}

	m.Info(fmt.Sprintf("log manager started - level: %s, json: %t, file: %s",
		m.level, m.jsonFormat, m.logPath), "log_manager", nil)
	return nil
}

// Stop signals shutdown, waits up to two seconds for the high-priority queue
// to be fully written, then cancels the workers and closes the file handle.
// Idempotent; safe to call on a never-started manager.
func (m *Manager) Stop() {
	m.stateMu.Lock()
	if !m.started || m.stopped {
		m.stateMu.Unlock()
		return
	}
	m.stopped = true
	close(m.shutdown)
	m.stateMu.Unlock()

	// The high-priority queue gets the hard drain guarantee; the low queue is
	// flushed on a best-effort basis within the same deadline.
	deadline := time.Now().Add(highDrainTimeout)
	for m.highPending.Load() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	for m.lowPending.Load() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			m.reportf("close log file: %v", err)
		}
		m.file = nil
	}
	m.mu.Unlock()
}

// ShouldLog reports whether an event at the given level passes the
// configured minimum.
func (m *Manager) ShouldLog(level Level) bool {
	return level >= m.level
}

// Log submits one event. It never blocks and never panics: events below the
// configured level return before any allocation, WARNING and ERROR events go
// to the high-priority queue (falling back to the error console when it is
// full), everything else goes to the low-priority queue and is dropped, with
// the drop counted, under backpressure.
func (m *Manager) Log(level Level, message, component string, context map[string]any) {
	m.submit(level, message, component, context, 4)
}

// Verbose logs at VERBOSE level.
func (m *Manager) Verbose(message, component string, context map[string]any) {
	m.submit(LevelVerbose, message, component, context, 4)
}

// Info logs at INFO level.
func (m *Manager) Info(message, component string, context map[string]any) {
	m.submit(LevelInfo, message, component, context, 4)
}

// Warning logs at WARNING level.
func (m *Manager) Warning(message, component string, context map[string]any) {
	m.submit(LevelWarning, message, component, context, 4)
}

// Error logs at ERROR level.
func (m *Manager) Error(message, component string, context map[string]any) {
	m.submit(LevelError, message, component, context, 4)
}

// Exception logs an error at ERROR level, capturing the error's type name
// and the current stack trace into the event context.
func (m *Manager) Exception(err error, message, component string) {
	m.exception(err, message, component, 5)
}

func (m *Manager) exception(err error, message, component string, callerSkip int) {
	if err == nil {
		return
	}
	if message == "" {
		message = fmt.Sprintf("exception: %v", err)
	} else {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	context := map[string]any{
		"exception_type": fmt.Sprintf("%T", err),
		"traceback":      string(debug.Stack()),
	}
	m.submit(LevelError, message, component, context, callerSkip)
}

func (m *Manager) submit(level Level, message, component string, context map[string]any, callerSkip int) {
	if !m.ShouldLog(level) {
		return
	}
	if component == "" {
		component = "log_manager"
	}
	ev := newEvent(level, message, m.serviceName, component, context, callerSkip)

	// Count before the send so Stop's drain loop never sees a zero counter
	// while an event sits in the queue.
	if level >= LevelWarning {
		m.highPending.Add(1)
		select {
		case m.high <- ev:
		default:
			m.highPending.Add(-1)
			// Never lose a high-priority event: surface it synchronously.
			m.writeFallback(ev)
		}
		return
	}
	m.lowPending.Add(1)
	select {
	case m.low <- ev:
	default:
		m.lowPending.Add(-1)
		m.dropped.Add(1)
	}
}

func (m *Manager) writeFallback(ev *Event) {
	line := m.render(ev)
	m.reportf("high priority log queue full: %s", line)
}

func (m *Manager) render(ev *Event) string {
	if m.jsonFormat {
		line, err := formatJSON(ev)
		if err != nil {
			return formatText(ev, DefaultFormat, m.timestampFormat)
		}
		return line
	}
	return formatText(ev, m.format, m.timestampFormat)
}

// reportf writes an internal diagnostic to the error console. Logging
// failures are absorbed here and never propagate to application code.
func (m *Manager) reportf(format string, args ...any) {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	fmt.Fprintf(m.errOut, format+"\n", args...)
}

func (m *Manager) writeConsole(line string) {
	if !m.consoleOutput {
		return
	}
	// Console output always goes to the error stream so it never interleaves
	// with a program's primary output.
	m.errMu.Lock()
	defer m.errMu.Unlock()
	fmt.Fprintln(m.errOut, line)
}
