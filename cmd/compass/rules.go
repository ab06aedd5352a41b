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
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/campus-compass/pkg/ux"
	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
	"github.com/AleutianAI/campus-compass/services/safety"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active safety ruleset",
	Long: `Shows the signal categories and response filters the service is
running with, in priority order. Honors the rules_path override from
config.yaml, so this is also the way to sanity-check a rules file before
deploying it.`,
	Run: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) {
	engine, err := loadEngine()
	if err != nil {
		log.Fatalf("Could not load safety rules: %v", err)
	}

	source := "embedded"
	if config.RulesPath != "" {
		source = config.RulesPath
	}
	ux.Muted("ruleset: " + source)

	ux.Title("Input signals")
	for _, sig := range engine.Signals() {
		fmt.Printf("%s %s (priority %d)\n",
			ux.IconBullet.Render(), ux.Styles.Bold.Render(sig.Name), sig.Priority)
		for _, p := range sig.Patterns {
			ux.Muted("    " + patternSummary(p))
		}
	}

	ux.Title("Response filters")
	for _, filter := range engine.Filters() {
		fmt.Printf("%s %s (priority %d)\n",
			ux.IconBullet.Render(), ux.Styles.Bold.Render(filter.Name), filter.Priority)
		for _, p := range filter.Patterns {
			ux.Muted("    " + patternSummary(p))
		}
		ux.Muted("    substitute: " + audit.Truncate(filter.Substitute, 80))
	}
}

func patternSummary(p safety.Pattern) string {
	if p.Phrase != "" {
		return fmt.Sprintf("%s phrase %q", p.Id, p.Phrase)
	}
	return fmt.Sprintf("%s regex %q", p.Id, p.Regex)
}
