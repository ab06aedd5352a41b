// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// gcsBatchSize is how many entries accumulate before a background upload.
const gcsBatchSize = 100

// GCSExporter ships log entries to a Google Cloud Storage bucket as
// JSON-lines objects under "logs/{service}/{date}/{uuid}.jsonl". The campus
// ops team aggregates these off-box.
//
// Entries buffer in memory and upload in batches; a failed upload puts the
// batch back rather than dropping it.
type GCSExporter struct {
	client  *storage.Client
	bucket  string
	service string

	mu     sync.Mutex
	buffer []LogEntry
}

// NewGCSExporter opens a storage client using the service account key at
// saKeyPath.
func NewGCSExporter(ctx context.Context, bucket, service, saKeyPath string) (*GCSExporter, error) {
	if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(saKeyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCSExporter{
		client:  client,
		bucket:  bucket,
		service: service,
		buffer:  make([]LogEntry, 0, gcsBatchSize),
	}, nil
}

// Export buffers the entry and triggers a background upload when the batch
// is full. Never blocks on the network.
func (e *GCSExporter) Export(_ context.Context, entry LogEntry) error {
	e.mu.Lock()
	e.buffer = append(e.buffer, entry)
	full := len(e.buffer) >= gcsBatchSize
	e.mu.Unlock()

	if full {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = e.Flush(ctx)
		}()
	}
	return nil
}

// Flush uploads all buffered entries as one object. On failure the entries
// go back into the buffer for the next attempt.
func (e *GCSExporter) Flush(ctx context.Context) error {
	e.mu.Lock()
	batch := e.buffer
	e.buffer = make([]LogEntry, 0, gcsBatchSize)
	e.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := e.upload(ctx, batch); err != nil {
		e.mu.Lock()
		e.buffer = append(batch, e.buffer...)
		e.mu.Unlock()
		return err
	}
	return nil
}

func (e *GCSExporter) upload(ctx context.Context, batch []LogEntry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range batch {
		if err := enc.Encode(map[string]any{
			"timestamp": entry.Timestamp.UTC().Format(time.RFC3339Nano),
			"level":     entry.Level.String(),
			"message":   entry.Message,
			"service":   entry.Service,
			"attrs":     entry.Attrs,
		}); err != nil {
			return fmt.Errorf("encode log entry: %w", err)
		}
	}

	objectPath := fmt.Sprintf("logs/%s/%s/%s.jsonl",
		e.service, time.Now().UTC().Format("2006-01-02"), uuid.NewString())

	writer := e.client.Bucket(e.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = "application/jsonl"
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write log batch to GCS object %s: %w", objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", objectPath, err)
	}
	return nil
}

// Close releases the storage client. Flush first.
func (e *GCSExporter) Close() error {
	return e.client.Close()
}

var _ LogExporter = (*GCSExporter)(nil)
