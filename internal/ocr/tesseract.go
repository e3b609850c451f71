// Package ocr wraps the text recognizer. The recognition itself is done by the
// tesseract binary; this package only runs it and reads its TSV output.
package ocr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"tradeshot/internal/types"
)

var ErrNoText = errors.New("no text recognized")

type Tesseract struct {
	binary   string
	language string
}

func NewTesseract(binary, language string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{binary: binary, language: language}
}

// Recognize runs tesseract on imagePath. The context deadline bounds the run.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (types.Recognition, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return types.Recognition{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout", "-l", t.language, "tsv")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return types.Recognition{}, ctx.Err()
		}
		return types.Recognition{}, fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(stderr.String()))
	}

	rec, err := ParseTSV(stdout.Bytes())
	if err != nil {
		return types.Recognition{}, err
	}
	if rec.Words == 0 {
		return rec, ErrNoText
	}
	return rec, nil
}

// ParseTSV reads tesseract's TSV output. Words on the same (block, paragraph,
// line) are joined with spaces and lines with newlines. Confidence is the mean
// of the positive word confidences.
func ParseTSV(data []byte) (types.Recognition, error) {
	var (
		rec      types.Recognition
		lines    []string
		current  []string
		lineKey  string
		confSum  float64
		confSeen int
	)

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	header := true
	for sc.Scan() {
		if header {
			header = false
			if strings.HasPrefix(sc.Text(), "level") {
				continue
			}
		}
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		key := cols[2] + "/" + cols[3] + "/" + cols[4]
		if key != lineKey {
			flush()
			lineKey = key
		}
		current = append(current, word)
		rec.Words++

		if c, err := strconv.ParseFloat(cols[10], 64); err == nil && c > 0 {
			confSum += c
			confSeen++
		}
	}
	if err := sc.Err(); err != nil {
		return types.Recognition{}, err
	}
	flush()

	rec.Text = strings.Join(lines, "\n")
	if confSeen > 0 {
		rec.Confidence = confSum / float64(confSeen)
	}
	return rec, nil
}
