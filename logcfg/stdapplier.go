package logcfg

import (
	"fmt"
	"log"
	"log/syslog"
	"os"
	"sync"
)

// StdApplier is the reference Applier: it fans log lines out to stderr,
// syslog, and/or a file sink, gated by the active Mask, the way the
// original's olsr_log writes to whichever handlers are registered.
type StdApplier struct {
	mu     sync.Mutex
	mask   Mask
	stderr bool
	syslog *syslog.Writer
	file   *os.File
	path   string
}

// NewStdApplier returns an Applier with every sink disabled and an empty
// mask (warn-only on every source).
func NewStdApplier() *StdApplier {
	return &StdApplier{}
}

func (a *StdApplier) SetMask(m Mask) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mask = m
}

func (a *StdApplier) SetStderr(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stderr = enabled
}

func (a *StdApplier) SetSyslog(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if enabled == (a.syslog != nil) {
		return
	}
	if !enabled {
		a.syslog.Close()
		a.syslog = nil
		return
	}
	w, err := syslog.New(syslog.LOG_DAEMON, "oonfd")
	if err != nil {
		log.Printf("logcfg: could not open syslog: %v", err)
		return
	}
	a.syslog = w
}

// SetFile swaps the open file sink for path, closing the previous one.
// path == "" closes the file sink without opening a new one.
func (a *StdApplier) SetFile(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		a.file.Close()
		a.file = nil
	}
	a.path = path
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("logcfg: %w", err)
	}
	a.file = f
	return nil
}

// Logf writes a formatted line to every enabled sink if source is enabled
// at sev, prefixed with the source name and severity.
func (a *StdApplier) Logf(source string, sev Severity, format string, args ...interface{}) {
	a.mu.Lock()
	enabled := a.mask.Enabled(source, sev)
	stderr := a.stderr
	sl := a.syslog
	file := a.file
	a.mu.Unlock()

	if !enabled {
		return
	}
	line := fmt.Sprintf("[%s] %s: %s", sev, source, fmt.Sprintf(format, args...))
	if stderr {
		log.Println(line)
	}
	if sl != nil {
		switch sev {
		case SeverityWarn:
			sl.Warning(line)
		case SeverityInfo:
			sl.Info(line)
		default:
			sl.Debug(line)
		}
	}
	if file != nil {
		fmt.Fprintln(file, line)
	}
}

// Close releases the syslog and file handles, for clean shutdown.
func (a *StdApplier) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.syslog != nil {
		a.syslog.Close()
	}
	if a.file != nil {
		a.file.Close()
	}
}
