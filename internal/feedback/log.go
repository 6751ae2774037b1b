// Package feedback appends user feedback to a JSON-lines file.
package feedback

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmpty is returned for blank feedback.
var ErrEmpty = errors.New("feedback is empty")

// Entry is one logged piece of feedback.
type Entry struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is an append-only feedback file, safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	open func(path string) (io.WriteCloser, error)
}

// NewLog writes entries to path, creating the file on first use.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now, open: openAppend}
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Path returns the file the log appends to.
func (l *Log) Path() string {
	return l.path
}

// Record appends feedback from user and returns the stored entry.
func (l *Log) Record(user, text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmpty
	}

	entry := Entry{
		ID:        uuid.NewString(),
		User:      user,
		Text:      text,
		CreatedAt: l.now().UTC(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal feedback: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open(l.path)
	if err != nil {
		return Entry{}, fmt.Errorf("open feedback log: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return Entry{}, fmt.Errorf("write feedback: %w", err)
	}
	if err := f.Close(); err != nil {
		return Entry{}, fmt.Errorf("close feedback log: %w", err)
	}
	return entry, nil
}

// ReadAll returns every entry in the log. A missing file yields no entries.
func (l *Log) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(strings.TrimSpace(sc.Text())) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("decode feedback line: %w", err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read feedback log: %w", err)
	}
	return entries, nil
}
