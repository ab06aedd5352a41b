// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/campus-compass/pkg/ux"
	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
)

func runReview(cmd *cobra.Command, args []string) {
	cfg := audit.DefaultConfig()
	cfg.Path = config.AuditDBPath
	cfg.GCInterval = 0 // short-lived process, no value GC

	store, err := audit.NewBadgerStore(cfg)
	if err != nil {
		log.Fatalf("Could not open audit store at %s: %v", config.AuditDBPath, err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := store.List(ctx, !showReviewed, reviewLimit)
	if err != nil {
		log.Fatalf("Could not list audit records: %v", err)
	}

	if len(records) == 0 {
		ux.Success("No records awaiting review.")
		return
	}

	interactive := !listOnly &&
		(isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()))

	if !interactive {
		printRecords(records)
		return
	}

	selected, err := pickRecords(records)
	if errors.Is(err, huh.ErrUserAborted) {
		ux.Muted("Aborted; nothing changed.")
		return
	}
	if err != nil {
		log.Fatalf("Review form failed: %v", err)
	}
	if len(selected) == 0 {
		ux.Muted("Nothing selected; nothing changed.")
		return
	}

	for _, id := range selected {
		if err := store.MarkReviewed(ctx, id); err != nil {
			ux.Error(fmt.Sprintf("Could not mark %s reviewed: %v", id, err))
			continue
		}
		ux.Success(fmt.Sprintf("Marked %s as reviewed", id))
	}
}

func printRecords(records []audit.Record) {
	ux.Title(fmt.Sprintf("Flagged conversations (%d)", len(records)))
	for _, rec := range records {
		status := ux.IconWarning.Render()
		if rec.Reviewed {
			status = ux.IconSuccess.Render()
		}
		fmt.Printf("%s %s  %s  %s\n",
			status,
			rec.Timestamp.Format(time.RFC3339),
			rec.ID,
			recordSummary(rec))
		if rec.ResponsePreview != "" {
			ux.Muted("    response: " + rec.ResponsePreview)
		}
	}
}

func pickRecords(records []audit.Record) ([]string, error) {
	opts := make([]huh.Option[string], 0, len(records))
	for _, rec := range records {
		label := fmt.Sprintf("%s  %s",
			rec.Timestamp.Format("2006-01-02 15:04"),
			recordSummary(rec))
		opts = append(opts, huh.NewOption(label, rec.ID))
	}

	var selected []string
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Mark records as reviewed").
			Description("Space to select, enter to confirm.").
			Options(opts...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return nil, err
	}
	return selected, nil
}

func recordSummary(rec audit.Record) string {
	summary := audit.Truncate(rec.QueryTruncated, 60)
	if branch, ok := rec.Metadata["branch"]; ok {
		summary = fmt.Sprintf("[%s] %s", branch, summary)
	}
	return summary
}
