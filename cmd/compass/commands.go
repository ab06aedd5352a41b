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
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "compass",
		Short: "A CLI to operate the Campus Compass wellbeing service",
		Long: `Compass is the operator tool for the campus wellbeing chat service.
It reviews flagged conversation records and dry-runs the safety ruleset.`,
	}

	reviewCmd = &cobra.Command{
		Use:   "review",
		Short: "Review flagged conversation records awaiting human attention",
		Long: `Lists audit records that have not yet been reviewed by a human.
In a terminal this is interactive: select records to mark them as reviewed.
With --list (or when output is piped) it prints the records and exits.`,
		Run: runReview,
	}
	listOnly     bool
	reviewLimit  int
	showReviewed bool

	scanCmd = &cobra.Command{
		Use:   "scan [text]",
		Short: "Run a message through the safety gate, classifier, and moderator",
		Long: `Evaluates a message exactly as the live pipeline would: input
validation first, then signal classification, then response moderation.
Reads from stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runScan,
	}
)

func init() {
	reviewCmd.Flags().BoolVar(&listOnly, "list", false, "print records without the interactive picker")
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 25, "maximum number of records to show")
	reviewCmd.Flags().BoolVar(&showReviewed, "all", false, "include records already reviewed")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(scanCmd)
}
