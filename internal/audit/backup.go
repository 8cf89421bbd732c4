// Package audit appends newline-delimited JSON backup records to per-entity
// log files. Writes are best-effort: callers log failures and move on, the
// primary operation never fails because of a backup.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Member appends to a per-day file directly under the backup dir.
func (w *Writer) Member(record map[string]any) error {
	name := "members_" + w.now().Format("2006-01-02") + ".log"
	return w.append(filepath.Join(w.dir, name), record)
}

// Loan appends to a per-month file under loans/.
func (w *Writer) Loan(record map[string]any) error {
	name := w.now().Format("2006-01") + ".log"
	return w.append(filepath.Join(w.dir, "loans", name), record)
}

// Return appends to a per-month file under returns/.
func (w *Writer) Return(record map[string]any) error {
	name := w.now().Format("2006-01") + ".log"
	return w.append(filepath.Join(w.dir, "returns", name), record)
}

// append serializes concurrent writers to the same file with an advisory
// flock, matching how the backup files have always been written.
func (w *Writer) append(path string, record map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s | %s\n", w.now().Format("2006-01-02 15:04:05"), b)

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}
