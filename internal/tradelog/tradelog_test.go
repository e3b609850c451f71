package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "logs"), filepath.Join(dir, "output"))
}

func testRecord(id, ticker string, at time.Time) types.TradeRecord {
	return types.TradeRecord{
		TradeID:         id,
		Ticker:          ticker,
		Direction:       types.DirectionShort,
		EntryPrice:      types.Dec("22880.75"),
		ExitPrice:       types.Dec("22878.0"),
		PnLAmount:       types.Dec("2220.00"),
		Confidence:      88.2,
		Timestamp:       at.UTC(),
		SourceImagePath: "shots/" + id + ".png",
	}
}

func TestAppendThenLatest(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("01AAA", "NQ1!", time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC))

	res := s.Append(rec)
	require.True(t, res.OK(), "log=%v file=%v", res.LogErr, res.FileErr)
	assert.Equal(t, []string{s.LogPath(), s.RecordPath("01AAA")}, res.SavedFiles())

	got, err := s.Latest()
	require.NoError(t, err)

	want, _ := json.Marshal(rec)
	have, _ := json.Marshal(got)
	assert.JSONEq(t, string(want), string(have))
	assert.Equal(t, string(want), string(have))

	fromFile, err := s.Record("01AAA")
	require.NoError(t, err)
	fileJSON, _ := json.Marshal(fromFile)
	assert.Equal(t, string(want), string(fileJSON))
}

func TestLatestEmpty(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNoTrades)

	require.NoError(t, os.MkdirAll(filepath.Dir(s.LogPath()), 0o755))
	require.NoError(t, os.WriteFile(s.LogPath(), nil, 0o644))
	_, err = s.Latest()
	assert.ErrorIs(t, err, ErrNoTrades)
}

func TestSearchReturnsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		res := s.Append(testRecord(fmt.Sprintf("NQ%02d", i), "NQ1!", base.Add(time.Duration(i)*time.Minute)))
		require.True(t, res.OK())
	}
	require.True(t, s.Append(testRecord("ES00", "ES1!", base.Add(time.Hour))).OK())

	got, err := s.Search("nq1!", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, rec := range got {
		assert.Equal(t, fmt.Sprintf("NQ%02d", 6-i), rec.TradeID)
		if i > 0 {
			assert.True(t, rec.Timestamp.Before(got[i-1].Timestamp))
		}
	}
}

func TestSearchDefaultLimitAndEmptyQuery(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		require.True(t, s.Append(testRecord(fmt.Sprintf("T%02d", i), "ES1!", base.Add(time.Duration(i)*time.Second))).OK())
	}

	got, err := s.Search("", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultSearchLimit)
	assert.Equal(t, "T07", got[0].TradeID)

	none, err := s.Search("AAPL", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchMissingLog(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Search("anything", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPartialTrailingLineIsSkipped(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	require.True(t, s.Append(testRecord("01AAA", "NQ1!", at)).OK())

	f, err := os.OpenFile(s.LogPath(), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"trade_id":"01BBB","ticker":"ES`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "01AAA", got.TradeID)

	// the next append must not be glued onto the broken line
	require.True(t, s.Append(testRecord("01CCC", "CL1!", at.Add(time.Minute))).OK())
	got, err = s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "01CCC", got.TradeID)

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordFileIsCreateOnly(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord("01DUP", "NQ1!", time.Now())
	require.True(t, s.Append(rec).OK())

	res := s.Append(rec)
	assert.NoError(t, res.LogErr)
	assert.Error(t, res.FileErr)
	assert.True(t, res.Searchable())
	assert.False(t, res.HasArtifact())
	assert.Equal(t, []string{s.LogPath()}, res.SavedFiles())
}

func TestLogFailureReportedSeparately(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	s := New(blocker, filepath.Join(dir, "output"))
	res := s.Append(testRecord("01AAA", "NQ1!", time.Now()))

	assert.Error(t, res.LogErr)
	assert.NoError(t, res.FileErr)
	assert.False(t, res.Searchable())
	assert.True(t, res.HasArtifact())
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(testRecord(fmt.Sprintf("C%03d", i), "NQ1!", time.Now()))
		}(i)
	}
	wg.Wait()

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestRecordRejectsBadIDs(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Record("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Record("01MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendNotification(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendNotification(types.NotificationAttempt{
		AttemptID: "a1", TradeID: "01AAA", Status: "sent to me@example.com", Success: true, StatusCode: 202,
	}))
	b, err := os.ReadFile(s.NotificationLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status_code":202`)
	assert.Equal(t, byte('\n'), b[len(b)-1])
}

func TestCompressOlder(t *testing.T) {
	s := newTestStore(t)
	require.True(t, s.Append(testRecord("01AAA", "NQ1!", time.Now())).OK())

	archived := filepath.Join(filepath.Dir(s.LogPath()), "trade_log-2024-01.jsonl")
	require.NoError(t, os.WriteFile(archived, []byte("{}\n"), 0o644))
	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(archived, old, old))
	require.NoError(t, os.Chtimes(s.LogPath(), old, old))

	done, err := s.CompressOlder(30)
	require.NoError(t, err)
	assert.Equal(t, []string{archived + ".gz"}, done)
	assert.NoFileExists(t, archived)
	assert.FileExists(t, s.LogPath())

	done, err = s.CompressOlder(0)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestNotificationLogRotatesDailyAndCompresses(t *testing.T) {
	s := newTestStore(t)
	attempt := types.NotificationAttempt{AttemptID: "a1", TradeID: "01AAA", Status: "not requested"}
	require.NoError(t, s.AppendNotification(attempt))

	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(s.NotificationLogPath(), old, old))

	attempt.AttemptID = "a2"
	require.NoError(t, s.AppendNotification(attempt))

	rotated := filepath.Join(filepath.Dir(s.NotificationLogPath()),
		"email_debug-"+old.UTC().Format("2006-01-02")+".jsonl")
	b, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"a1"`)

	live, err := os.ReadFile(s.NotificationLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(live), `"a2"`)
	assert.NotContains(t, string(live), `"a1"`)

	// Rename keeps the old mtime, so the dated file is already past retention.
	done, err := s.CompressOlder(30)
	require.NoError(t, err)
	assert.Equal(t, []string{rotated + ".gz"}, done)
	assert.FileExists(t, s.NotificationLogPath())
}

func TestNotificationLogSameDayIsNotRotated(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"a1", "a2"} {
		require.NoError(t, s.AppendNotification(types.NotificationAttempt{AttemptID: id}))
	}
	entries, err := os.ReadDir(filepath.Dir(s.NotificationLogPath()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
