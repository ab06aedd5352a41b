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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestAppendAndList verifies records round-trip and come back most recent
// first.
func TestAppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := NewRecord(fmt.Sprintf("query %d", i), fmt.Sprintf("response %d", i), map[string]string{"language": "english"})
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Append(ctx, rec))
	}

	records, err := store.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "query 2", records[0].QueryTruncated)
	assert.Equal(t, "query 0", records[2].QueryTruncated)
	assert.Equal(t, "english", records[0].Metadata["language"])
	assert.False(t, records[0].Reviewed)
}

// TestListLimit verifies the limit applies after review filtering.
func TestListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, NewRecord(fmt.Sprintf("q%d", i), "r", nil)))
	}

	records, err := store.List(ctx, false, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

// TestMarkReviewed verifies the review flag flips and unreviewed listing
// excludes the record afterwards.
func TestMarkReviewed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := NewRecord("first", "resp", nil)
	second := NewRecord("second", "resp", nil)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	require.NoError(t, store.MarkReviewed(ctx, first.ID))

	unreviewed, err := store.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, unreviewed, 1)
	assert.Equal(t, second.ID, unreviewed[0].ID)

	all, err := store.List(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkReviewedNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.MarkReviewed(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestNewRecordTruncation verifies the storage limits on query and response
// copies.
func TestNewRecordTruncation(t *testing.T) {
	longQuery := ""
	for i := 0; i < 600; i++ {
		longQuery += "q"
	}
	longResponse := ""
	for i := 0; i < 300; i++ {
		longResponse += "r"
	}

	rec := NewRecord(longQuery, longResponse, nil)
	assert.Len(t, []rune(rec.QueryTruncated), MaxQueryChars)
	assert.Len(t, []rune(rec.ResponsePreview), MaxPreviewChars)
	assert.Equal(t, 300, rec.ResponseLength)
	assert.False(t, rec.Reviewed)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
}

// TestTruncateMultibyte verifies limits count characters, not bytes, so
// Devanagari text is never cut mid-rune.
func TestTruncateMultibyte(t *testing.T) {
	hindi := ""
	for i := 0; i < 250; i++ {
		hindi += "मद" // 2 chars, 6 bytes
	}
	got := Truncate(hindi, MaxPreviewChars)
	assert.Len(t, []rune(got), MaxPreviewChars)

	short := "सहायता"
	assert.Equal(t, short, Truncate(short, MaxPreviewChars))
}

// TestConcurrentAppends verifies the append path needs no request-level
// coordination.
func TestConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 20
	const perWorker = 5

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rec := NewRecord(fmt.Sprintf("w%d-q%d", w, i), "resp", nil)
				assert.NoError(t, store.Append(ctx, rec))
			}
		}(w)
	}
	wg.Wait()

	records, err := store.List(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, records, workers*perWorker)
}

// TestAlerts verifies filtering and the 10-most-recent window.
func TestAlerts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateAlert(ctx, Alert{Title: "inactive", Message: "m", Type: AlertInfo, Active: false, Approved: true})
	require.NoError(t, err)
	_, err = store.CreateAlert(ctx, Alert{Title: "unapproved", Message: "m", Type: AlertWarning, Active: true, Approved: false})
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := store.CreateAlert(ctx, Alert{
			Title:    fmt.Sprintf("alert %d", i),
			Message:  "campus notice",
			Type:     AlertInfo,
			Active:   true,
			Approved: true,
		})
		require.NoError(t, err)
		// Distinct creation timestamps keep the ordering deterministic.
		time.Sleep(time.Millisecond)
	}

	alerts, err := store.ListActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 10)

	assert.Equal(t, "alert 11", alerts[0].Title)
	assert.Equal(t, "alert 2", alerts[9].Title)
	for _, a := range alerts {
		assert.True(t, a.Active)
		assert.True(t, a.Approved)
	}
}

// TestCreateAlertTruncation verifies the alert field limits.
func TestCreateAlertTruncation(t *testing.T) {
	store := newTestStore(t)

	title := ""
	for i := 0; i < 250; i++ {
		title += "t"
	}
	message := ""
	for i := 0; i < 1100; i++ {
		message += "m"
	}

	alert, err := store.CreateAlert(context.Background(), Alert{
		Title: title, Message: message, Type: AlertEmergency, Active: true, Approved: true,
	})
	require.NoError(t, err)
	assert.Len(t, alert.Title, MaxAlertTitleChars)
	assert.Len(t, alert.Message, MaxAlertMessageChars)
	assert.NotEmpty(t, alert.ID)
}

// TestOpenRequiresPath verifies persistent mode refuses an empty path.
func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{InMemory: false})
	assert.Error(t, err)
}
