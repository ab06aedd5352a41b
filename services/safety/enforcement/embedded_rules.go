// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
This file is the bridge between the build system and the runtime safety logic. It uses the
Go embed package to bake safety_rules.yaml directly into the compiled binary, so the rule
set that gates crisis detection is immutable at runtime and travels with the executable.
*/

package enforcement

import (
	_ "embed"
)

// SafetyRules holds the raw byte content of the 'safety_rules.yaml' file.
//
// Populated at compile-time via the Go 'embed' directive. Baking the YAML into
// the binary guarantees the crisis-detection rules cannot be tampered with on
// the host filesystem without recompiling the application.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(enforcement.SafetyRules, &targetStruct)
//
//go:embed safety_rules.yaml
var SafetyRules []byte
