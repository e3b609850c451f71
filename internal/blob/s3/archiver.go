package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tradeshot/internal/types"
)

// Putter is the single S3 call the archiver needs.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archiver struct {
	client Putter
	bucket string
	prefix string
}

func NewArchiver(client Putter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (a *Archiver) key(parts ...string) string {
	if a.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{a.prefix}, parts...)...)
}

// ArchiveTrade uploads the record JSON and, when it can be read, the source
// screenshot. It returns the keys that were written; an error means at least
// one upload failed.
func (a *Archiver) ArchiveTrade(ctx context.Context, rec types.TradeRecord) ([]string, error) {
	var keys []string

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	recKey := a.key("records", rec.TradeID+".json")
	if err := a.put(ctx, recKey, body, "application/json"); err != nil {
		return keys, err
	}
	keys = append(keys, recKey)

	if rec.SourceImagePath == "" {
		return keys, nil
	}
	img, err := os.ReadFile(rec.SourceImagePath)
	if err != nil {
		return keys, fmt.Errorf("s3blob: read screenshot: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(rec.SourceImagePath))
	imgKey := a.key("images", rec.TradeID+ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.put(ctx, imgKey, img, contentType); err != nil {
		return keys, err
	}
	return append(keys, imgKey), nil
}

func (a *Archiver) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return nil
}
