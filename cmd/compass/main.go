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
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/campus-compass/pkg/ux"
)

// Config is the operator-side configuration for the compass CLI.
type Config struct {
	// AuditDBPath is the BadgerDB directory shared with the orchestrator.
	AuditDBPath string `yaml:"audit_db_path"`
	// RulesPath overrides the embedded safety ruleset for scan.
	RulesPath string `yaml:"rules_path"`
}

var config = Config{
	AuditDBPath: "data/audit",
}

var plainOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"plain text output (no colors or boxes)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if plainOutput {
			ux.SetPlain(true)
		}

		configPath := os.Getenv("COMPASS_CONFIG")
		if configPath == "" {
			configPath = "config.yaml"
		}

		yamlFile, err := os.ReadFile(configPath)
		if errors.Is(err, fs.ErrNotExist) {
			// No config file is fine; defaults apply.
			return
		}
		if err != nil {
			log.Fatalf("Error reading %s: %v", configPath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &config); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
	}
}
