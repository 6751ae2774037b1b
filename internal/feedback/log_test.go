package feedback_test

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/feedback"
)

func TestRecordAndReadAll(t *testing.T) {
	log := feedback.NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))

	entries, err := log.ReadAll()
	require.NoError(t, err)
	require.Empty(t, entries)

	first, err := log.Record("analyst", "  Topics look great  ")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "Topics look great", first.Text)
	require.False(t, first.CreatedAt.IsZero())

	_, err = log.Record("editor", "Need more sources")
	require.NoError(t, err)

	entries, err = log.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, first.ID, entries[0].ID)
	require.Equal(t, "editor", entries[1].User)
}

func TestRecordRejectsBlank(t *testing.T) {
	log := feedback.NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))
	_, err := log.Record("analyst", " \n\t")
	require.ErrorIs(t, err, feedback.ErrEmpty)
}

func TestRecordConcurrent(t *testing.T) {
	log := feedback.NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := log.Record("analyst", "parallel note")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 20)
}

type failingFile struct {
	writeErr error
	closeErr error
	closed   bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestRecordReportsCloseError(t *testing.T) {
	log := feedback.NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))
	diskFull := errors.New("no space left on device")
	file := &failingFile{closeErr: diskFull}
	feedback.SetOpener(log, func(string) (io.WriteCloser, error) { return file, nil })

	entry, err := log.Record("analyst", "Topics look great")
	require.ErrorIs(t, err, diskFull)
	require.Empty(t, entry.ID)
	require.True(t, file.closed)
}

func TestRecordClosesAfterWriteError(t *testing.T) {
	log := feedback.NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))
	broken := errors.New("input/output error")
	file := &failingFile{writeErr: broken}
	feedback.SetOpener(log, func(string) (io.WriteCloser, error) { return file, nil })

	_, err := log.Record("analyst", "Topics look great")
	require.ErrorIs(t, err, broken)
	require.True(t, file.closed)
}
