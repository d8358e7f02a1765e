// Package daemon keeps a single "artisan watch" process per data directory.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
)

// PIDFileName is the PID file name, kept next to the database.
const PIDFileName = "watch.pid"

// Errors
var (
	ErrNotRunning     = errors.New("watch is not running")
	ErrAlreadyRunning = errors.New("watch is already running")
)

// PIDFile manages the watch PID file.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PID file manager for path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// PIDFilePath returns the PID file of the watcher using the database in dir.
// Watchers of different databases do not exclude each other.
func PIDFilePath(stateDir, dbPath string) string {
	if dbPath == "" {
		return filepath.Join(stateDir, PIDFileName)
	}
	return filepath.Join(filepath.Dir(filepath.Clean(dbPath)), PIDFileName)
}

// Acquire records the current process as the watcher. It fails with
// ErrAlreadyRunning when another live process holds the file; a file left by
// a dead process is taken over.
func (p *PIDFile) Acquire() error {
	if pid := p.RunningPID(); pid != 0 && pid != os.Getpid() {
		return fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, p.path)
	}
	return p.WritePID(os.Getpid())
}

// Release removes the file if it still names the current process.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return nil
		}
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	return p.Remove()
}

// WritePID writes a specific PID to the file.
func (p *PIDFile) WritePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return apperrors.NewSystemError("failed to create PID directory", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return apperrors.NewSystemError("failed to write PID file", err)
	}
	return nil
}

// Read reads the PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Remove removes the PID file.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// RunningPID returns the PID if the watcher is running, or 0 if not.
func (p *PIDFile) RunningPID() int {
	pid, err := p.Read()
	if err != nil || !IsProcessRunning(pid) {
		return 0
	}
	return pid
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	return process.Signal(syscall.Signal(0)) == nil
}
