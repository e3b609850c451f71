package tradelog

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CompressOlder gzips rotated .jsonl files in the log directory (the dated
// notification logs left by AppendNotification) whose modification time is
// older than retentionDays. The live trade and notification logs are never
// touched. It returns the paths it compressed.
func (s *Store) CompressOlder(retentionDays int) ([]string, error) {
	if retentionDays <= 0 {
		return nil, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	live := map[string]bool{
		filepath.Clean(s.LogPath()):             true,
		filepath.Clean(s.NotificationLogPath()): true,
	}

	var done []string
	err := filepath.WalkDir(s.logDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".jsonl" || live[filepath.Clean(p)] {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed by an earlier run
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return nil
		}
		done = append(done, gz)
		return nil
	})
	return done, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Close()
	return os.Remove(src)
}
