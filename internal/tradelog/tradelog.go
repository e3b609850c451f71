// Package tradelog is the append-only trade store: one JSON line per record in
// the log directory plus one create-only JSON file per record in the output
// directory.
package tradelog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"tradeshot/internal/types"
)

const (
	LogFileName          = "trade_log.jsonl"
	NotificationFileName = "email_debug.jsonl"
	DefaultSearchLimit   = 5
)

var (
	ErrNoTrades = errors.New("no trades yet")
	ErrNotFound = errors.New("trade not found")
)

// Appends from every Store in the process share one lock so concurrent
// pipelines never interleave partial lines.
var mu sync.Mutex

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Store struct {
	logDir    string
	outputDir string
}

func New(logDir, outputDir string) *Store {
	return &Store{logDir: logDir, outputDir: outputDir}
}

func (s *Store) LogPath() string {
	return filepath.Join(s.logDir, LogFileName)
}

func (s *Store) NotificationLogPath() string {
	return filepath.Join(s.logDir, NotificationFileName)
}

func (s *Store) RecordPath(tradeID string) string {
	return filepath.Join(s.outputDir, "trade_"+tradeID+".json")
}

// Append writes the record to the log and to its own file. Both writes are
// always attempted and reported separately; neither undoes the other.
func (s *Store) Append(rec types.TradeRecord) types.StorageResult {
	res := types.StorageResult{LogPath: s.LogPath(), RecordPath: s.RecordPath(rec.TradeID)}

	line, err := json.Marshal(rec)
	if err != nil {
		err = fmt.Errorf("encode record: %w", err)
		res.LogErr, res.FileErr = err, err
		return res
	}

	res.LogErr = appendLine(res.LogPath, line)
	res.FileErr = s.writeRecordFile(res.RecordPath, rec)
	return res
}

func (s *Store) writeRecordFile(path string, rec types.TradeRecord) error {
	if !validID.MatchString(rec.TradeID) {
		return fmt.Errorf("invalid trade id %q", rec.TradeID)
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AppendNotification records one email attempt in the notification log. The
// log is rotated per UTC day: a file last written on an earlier day is renamed
// to email_debug-<YYYY-MM-DD>.jsonl first, leaving it to CompressOlder.
func (s *Store) AppendNotification(a types.NotificationAttempt) error {
	line, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode notification attempt: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if err := rotateDaily(s.NotificationLogPath(), time.Now()); err != nil {
		return fmt.Errorf("rotate notification log: %w", err)
	}
	return appendLocked(s.NotificationLogPath(), line)
}

// rotateDaily renames path to its dated sibling when it was last modified on
// an earlier UTC day than now. Callers hold mu.
func rotateDaily(path string, now time.Time) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	day := info.ModTime().UTC().Format("2006-01-02")
	if day == now.UTC().Format("2006-01-02") {
		return nil
	}
	base := strings.TrimSuffix(path, ".jsonl")
	dst := base + "-" + day + ".jsonl"
	if _, err := os.Stat(dst); err == nil {
		dst = fmt.Sprintf("%s-%s-%d.jsonl", base, day, now.UnixNano())
	}
	return os.Rename(path, dst)
}

// appendLine writes line plus a newline in a single write. If an earlier crash
// left the file without a trailing newline, the new line starts on its own.
func appendLine(path string, line []byte) error {
	mu.Lock()
	defer mu.Unlock()
	return appendLocked(path, line)
}

func appendLocked(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 0, len(line)+2)
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			buf = append(buf, '\n')
		}
	}
	buf = append(buf, line...)
	buf = append(buf, '\n')

	if _, err := f.Write(buf); err != nil {
		return err
	}
	return f.Sync()
}

// All returns every readable record in log order.
func (s *Store) All() ([]types.TradeRecord, error) {
	return readRecords(s.LogPath())
}

// Search scans the log from newest to oldest and returns up to limit records
// with a text field containing query, case-insensitively. An empty query
// matches every record.
func (s *Store) Search(query string, limit int) ([]types.TradeRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	recs, err := readRecords(s.LogPath())
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]types.TradeRecord, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		if matches(recs[i], q) {
			out = append(out, recs[i])
		}
	}
	return out, nil
}

func matches(rec types.TradeRecord, q string) bool {
	if q == "" {
		return true
	}
	for _, f := range rec.TextFields() {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Latest returns the most recently appended record, or ErrNoTrades.
func (s *Store) Latest() (types.TradeRecord, error) {
	recs, err := readRecords(s.LogPath())
	if err != nil {
		return types.TradeRecord{}, err
	}
	if len(recs) == 0 {
		return types.TradeRecord{}, ErrNoTrades
	}
	return recs[len(recs)-1], nil
}

// Record reads the standalone file written for tradeID.
func (s *Store) Record(tradeID string) (types.TradeRecord, error) {
	if !validID.MatchString(tradeID) {
		return types.TradeRecord{}, ErrNotFound
	}
	b, err := os.ReadFile(s.RecordPath(tradeID))
	if errors.Is(err, os.ErrNotExist) {
		return types.TradeRecord{}, ErrNotFound
	}
	if err != nil {
		return types.TradeRecord{}, err
	}
	var rec types.TradeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return types.TradeRecord{}, fmt.Errorf("decode %s: %w", tradeID, err)
	}
	return rec, nil
}

// readRecords parses the log, skipping blank and unparsable lines such as a
// partial last line left by a crash. A missing log reads as empty.
func readRecords(path string) ([]types.TradeRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeLines(f)
}

func decodeLines(r io.Reader) ([]types.TradeRecord, error) {
	var recs []types.TradeRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec types.TradeRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return recs, err
	}
	return recs, nil
}
