package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const DefaultLockDir = "/var/run/svnbackuper"

type LocalLocker struct {
	path string
	ttl  time.Duration
	file *os.File
	mu   sync.Mutex
	held bool
}

type LocalOptions struct {
	Dir string
	// Scope names what is locked, normally the backup root.
	Scope string
	TTL   time.Duration
}

func NewLocal(opts LocalOptions) *LocalLocker {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultLockDir
	}
	return &LocalLocker{path: filepath.Join(dir, lockName(opts.Scope)), ttl: opts.TTL}
}

// lockName maps a scope to a stable file name.
func lockName(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "svnbackuper.lock"
	}
	if abs, err := filepath.Abs(scope); err == nil {
		scope = abs
	}
	sum := sha256.Sum256([]byte(filepath.Clean(scope)))
	return "svnbackuper-" + hex.EncodeToString(sum[:6]) + ".lock"
}

func (l *LocalLocker) Path() string {
	return l.path
}

func (l *LocalLocker) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return fmt.Errorf("lock already held by this process")
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	tryAcquire := func() (*os.File, error) {
		return os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0640)
	}

	file, err := tryAcquire()
	if err != nil {
		if !os.IsExist(err) {
			return fmt.Errorf("create lock file: %w", err)
		}
		if !l.stale(ctx) {
			return fmt.Errorf("%w: %s", ErrLocked, l.path)
		}
		if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("stale lock file exists, remove failed: %w", removeErr)
		}
		file, err = tryAcquire()
		if err != nil {
			if os.IsExist(err) {
				return fmt.Errorf("%w: %s", ErrLocked, l.path)
			}
			return fmt.Errorf("retry acquire after stale remove: %w", err)
		}
	}

	if _, err := file.WriteString(fmt.Sprintf("%d\n", os.Getpid())); err != nil {
		_ = file.Close()
		_ = os.Remove(l.path)
		return fmt.Errorf("write lock file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(l.path)
		return fmt.Errorf("sync lock file: %w", err)
	}

	l.file = file
	l.held = true
	return nil
}

// stale reports whether the existing lock file can be taken over: its
// holder is no longer running, or it is older than the TTL.
func (l *LocalLocker) stale(ctx context.Context) bool {
	if pid, ok := Holder(l.path); ok {
		running, err := process.PidExistsWithContext(ctx, int32(pid))
		if err == nil && !running {
			return true
		}
	}
	if l.ttl <= 0 {
		return false
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return os.IsNotExist(err)
	}
	return time.Since(info.ModTime()) >= l.ttl
}

// Holder returns the pid recorded in the lock file at path.
func Holder(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (l *LocalLocker) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	var errs []error
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			errs = append(errs, err)
		}
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	l.held = false
	if len(errs) > 0 {
		return fmt.Errorf("release lock: %v", errs)
	}
	return nil
}
