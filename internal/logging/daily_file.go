package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileDateLayout = "2006-01-02"

// DailyFile writes to <dir>/app-<date>.log, switching files when the date
// changes and removing files older than the retention window.
type DailyFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	now           func() time.Time
	date          string
	file          *os.File
}

func OpenDailyFile(dir string, retentionDays int) (*DailyFile, error) {
	return openDailyFile(dir, retentionDays, time.Now)
}

func openDailyFile(dir string, retentionDays int, now func() time.Time) (*DailyFile, error) {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	d := &DailyFile{dir: dir, retentionDays: retentionDays, now: now}
	if err := d.rotate(now().Format(fileDateLayout)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date := d.now().Format(fileDateLayout); date != d.date {
		if err := d.rotate(date); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
}

func (d *DailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.Sync()
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.Close()
}

func (d *DailyFile) rotate(date string) error {
	filename := filepath.Join(d.dir, fmt.Sprintf("app-%s.log", date))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = file
	d.date = date
	cleanupOldLogs(d.dir, d.retentionDays, d.now())
	return nil
}

func cleanupOldLogs(dir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	today, _ := time.Parse(fileDateLayout, now.Format(fileDateLayout))
	cutoff := today.AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		logDate, err := time.Parse(fileDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log"))
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
