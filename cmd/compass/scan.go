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
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/campus-compass/pkg/ux"
	"github.com/AleutianAI/campus-compass/services/safety"
)

func runScan(cmd *cobra.Command, args []string) {
	text, err := scanInput(args)
	if err != nil {
		log.Fatalf("Could not read input: %v", err)
	}

	engine, err := loadEngine()
	if err != nil {
		log.Fatalf("Could not load safety rules: %v", err)
	}

	ux.Title("Input gate")
	gate := safety.Validate(text)
	if !gate.Valid {
		ux.Error(fmt.Sprintf("Rejected: %s", gate.Reason))
		os.Exit(1)
	}
	ux.Success("Accepted")

	ux.Title("Classifier")
	cls := engine.Classify(text)
	if !cls.Flagged() {
		ux.Success("No signals matched")
	}
	for _, m := range cls.Matches {
		ux.Warning(fmt.Sprintf("%s matched pattern %s", m.Signal, m.PatternId))
	}
	if cls.IsDistress() {
		ux.Box("Distress signal: the live pipeline would take the crisis branch\nand never invoke the AI backend for this message.")
	}

	ux.Title("Response moderator")
	verdict := engine.Moderate(text)
	if verdict.Safe {
		ux.Success("Would pass through unchanged")
		return
	}
	ux.Warning(fmt.Sprintf("Would be substituted (%s)", verdict.Reason))
	ux.Muted("substitute: " + verdict.SanitizedText)
}

// scanInput takes the message from the argument, or stdin when absent.
func scanInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func loadEngine() (*safety.Engine, error) {
	if config.RulesPath == "" {
		return safety.NewEngine()
	}
	data, err := os.ReadFile(config.RulesPath)
	if err != nil {
		return nil, err
	}
	return safety.NewEngineFromYAML(data)
}
