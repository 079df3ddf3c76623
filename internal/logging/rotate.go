package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modkit/internal/fileutil"
)

// rotateCheckInterval is the fixed policy interval between file size polls.
const rotateCheckInterval = 10 * time.Second

// runMonitor watches the live log file and rotates it once it grows past the
// configured threshold. Active only when a file sink is configured.
func (m *Manager) runMonitor(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(rotateCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.maybeRotate()
		case <-ctx.Done():
			return
		}
	}
}

// maybeRotate rotates the log file when its size exceeds the threshold.
func (m *Manager) maybeRotate() {
	info, err := os.Stat(m.logPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.reportf("monitor log file: %v", err)
		}
		return
	}
	if info.Size() <= m.maxSize {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return
	}
	if err := m.rotateLocked(); err != nil {
		m.reportf("rotate logs: %v", err)
		m.reopenLocked()
	}
}

// rotateLocked archives the live file and reopens a fresh one. Callers must
// hold m.mu so no write can observe the handle mid-swap.
func (m *Manager) rotateLocked() error {
	if err := m.file.Close(); err != nil {
		m.file = nil
		return fmt.Errorf("%w: close before rotate: %w", ErrLogFile, err)
	}
	m.file = nil

	ext := filepath.Ext(m.logPath)
	stem := strings.TrimSuffix(filepath.Base(m.logPath), ext)

	// Shift existing backups up one slot, newest first. The occupant of the
	// top slot is removed, so the archive never exceeds backupCount files.
	for i := m.backupCount - 1; i >= 1; i-- {
		source := filepath.Join(m.archiveDir, fmt.Sprintf("%s.%d%s", stem, i, ext))
		target := filepath.Join(m.archiveDir, fmt.Sprintf("%s.%d%s", stem, i+1, ext))
		if _, err := os.Stat(source); err != nil {
			continue
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: evict backup %q: %w", ErrLogFile, target, err)
		}
		if err := os.Rename(source, target); err != nil {
			return fmt.Errorf("%w: shift backup %q: %w", ErrLogFile, source, err)
		}
	}

	first := filepath.Join(m.archiveDir, fmt.Sprintf("%s.1%s", stem, ext))
	if err := os.Remove(first); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: clear backup slot %q: %w", ErrLogFile, first, err)
	}
	if err := fileutil.CopyFile(m.logPath, first); err != nil {
		return fmt.Errorf("%w: archive %q: %w", ErrLogFile, m.logPath, err)
	}

	if err := os.Truncate(m.logPath, 0); err != nil {
		return fmt.Errorf("%w: truncate %q: %w", ErrLogFile, m.logPath, err)
	}

	file, err := os.OpenFile(m.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: reopen %q: %w", ErrLogFile, m.logPath, err)
	}
	m.file = file

	// The marker bypasses the queues so rotation is visible even when the
	// pipeline is saturated.
	marker := fmt.Sprintf("[%s] [%s] [log_manager] [INFO] Log file rotated",
		time.Now().Format(m.timestampFormat), m.serviceName)
	fmt.Fprintln(m.file, marker)
	m.writeConsole(marker)
	return nil
}

// reopenLocked restores the file handle after a failed rotation so the
// manager is never left without a file sink it was configured with.
func (m *Manager) reopenLocked() {
	if m.file != nil {
		return
	}
	file, err := os.OpenFile(m.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		m.reportf("reopen log file: %v", err)
		return
	}
	m.file = file
}
