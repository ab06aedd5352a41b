// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package audit

import (
	"context"
	"log/slog"
)

// LogSink writes audit records to the process log instead of durable
// storage. It serves two roles: the configured sink when no database path is
// set, and the fallback channel when a durable append fails. Process output
// is the one channel assumed to always work.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing through logger, or slog.Default() when
// logger is nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Append implements Sink. It never fails.
func (s *LogSink) Append(_ context.Context, rec Record) error {
	attrs := []any{
		slog.String("id", rec.ID),
		slog.String("query", rec.QueryTruncated),
		slog.String("response_preview", rec.ResponsePreview),
		slog.Int("response_length", rec.ResponseLength),
		slog.Time("timestamp", rec.Timestamp),
		slog.Bool("reviewed", rec.Reviewed),
	}
	for k, v := range rec.Metadata {
		attrs = append(attrs, slog.String("meta_"+k, v))
	}
	s.logger.Warn("audit record (log fallback)", attrs...)
	return nil
}
