// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline sequences the safety stages around a chat request:
// input gate, lexical classification, crisis branch or backend generation,
// response moderation, and audit emission.
//
// # Error Policy
//
// Only a gate rejection surfaces to the caller as an error (ValidationError).
// Backend failures, audit failures, and panics are absorbed into a
// success-shaped Outcome carrying a safe textual explanation: the surface
// must degrade gracefully rather than show a broken state to a potentially
// distressed user.
//
// # Thread Safety
//
// A Pipeline is immutable after construction and safe for concurrent use.
// Requests share no mutable state besides the audit sink, which supports
// concurrent appends.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/campus-compass/services/llm"
	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
	"github.com/AleutianAI/campus-compass/services/orchestrator/observability"
	"github.com/AleutianAI/campus-compass/services/orchestrator/prompts"
	"github.com/AleutianAI/campus-compass/services/safety"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultGenerationTimeout bounds one backend call.
	DefaultGenerationTimeout = 30 * time.Second

	// DefaultAuditTimeout bounds one audit append. Kept short so a slow
	// store cannot stall the response path.
	DefaultAuditTimeout = 5 * time.Second
)

// User-facing fallback strings. One per backend failure kind, so operators
// can tell failure classes apart from user reports alone, plus the generic
// apology for anything unexpected.
const (
	MsgInvalidCredentials = "The AI service credentials are invalid. Please contact campus support."
	MsgQuotaExceeded      = "The AI service is temporarily over capacity. Please try again in a few minutes."
	MsgModelError         = "There was an issue with the AI model. Please try again later."
	MsgBackendUnknown     = "I encountered an error reaching the AI service. Please try again or contact support."
	MsgNoBackend          = "I'm here to help, but the AI service is not configured yet. Please contact campus support."
	MsgUnexpected         = "I apologize, but something went wrong on our side. Please try again, or reach out to campus support if it keeps happening."
)

// =============================================================================
// Types
// =============================================================================

// Ruleset is the classification surface the pipeline needs. Both
// *safety.Engine and *safety.Watcher satisfy it.
type Ruleset interface {
	Classify(text string) safety.Classification
	Moderate(text string) safety.Verdict
}

// Outcome is the result of one request. Always success-shaped: whatever
// happened, Response carries text fit to show the user.
type Outcome struct {
	Response             string
	RequiresHumanSupport bool
	Timestamp            time.Time
}

// ValidationError is an input gate rejection. It is the only error kind
// Process returns.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Config assembles a Pipeline.
type Config struct {
	// Rules is required.
	Rules Ruleset

	// Backend may be nil when no provider is configured; requests then get
	// a fixed explanation instead of generated text.
	Backend llm.Client

	// Sink receives audit records for flagged interactions. May be nil;
	// flagged interactions then go straight to the fallback log.
	Sink audit.Sink

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *observability.SafetyMetrics

	// GenerationTimeout defaults to DefaultGenerationTimeout.
	GenerationTimeout time.Duration

	// AuditTimeout defaults to DefaultAuditTimeout.
	AuditTimeout time.Duration

	// Prompt builds the backend prompt from (query, language). Defaults to
	// prompts.Wellbeing.
	Prompt func(query, language string) string
}

// Pipeline runs the safety stages. Construct with New.
type Pipeline struct {
	rules        Ruleset
	backend      llm.Client
	sink         audit.Sink
	fallback     *audit.LogSink
	logger       *slog.Logger
	metrics      *observability.SafetyMetrics
	genTimeout   time.Duration
	auditTimeout time.Duration
	prompt       func(query, language string) string
}

// New validates cfg and builds a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Rules == nil {
		return nil, &ConfigError{Field: "Rules"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	genTimeout := cfg.GenerationTimeout
	if genTimeout <= 0 {
		genTimeout = DefaultGenerationTimeout
	}
	auditTimeout := cfg.AuditTimeout
	if auditTimeout <= 0 {
		auditTimeout = DefaultAuditTimeout
	}
	promptFn := cfg.Prompt
	if promptFn == nil {
		promptFn = prompts.Wellbeing
	}
	return &Pipeline{
		rules:        cfg.Rules,
		backend:      cfg.Backend,
		sink:         cfg.Sink,
		fallback:     audit.NewLogSink(logger),
		logger:       logger,
		metrics:      cfg.Metrics,
		genTimeout:   genTimeout,
		auditTimeout: auditTimeout,
		prompt:       promptFn,
	}, nil
}

// ConfigError reports a missing required Config field.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string { return "pipeline config: " + e.Field + " is required" }

// =============================================================================
// Processing
// =============================================================================

// Process runs one utterance through the pipeline.
//
// The returned error is non-nil only for a gate rejection
// (*ValidationError); every other failure mode is absorbed into the Outcome.
func (p *Pipeline) Process(ctx context.Context, query, language string) (out Outcome, err error) {
	if language != prompts.LanguageHindi {
		language = "english"
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in safety pipeline", "panic", r)
			p.metrics.RecordRequest(observability.BranchGenerate, "fallback")
			out = Outcome{
				Response:             MsgUnexpected,
				RequiresHumanSupport: false,
				Timestamp:            time.Now().UTC(),
			}
			err = nil
		}
	}()

	state := StateReceived

	gate := safety.Validate(query)
	state, _ = advance(state, gate.Valid, false)
	if state == StateRejected {
		p.logger.Info("input rejected by gate", "reason", gate.Reason)
		p.metrics.RecordGateRejection(gate.Reason)
		p.metrics.RecordRequest(observability.BranchRejected, "ok")
		return Outcome{}, &ValidationError{Reason: gate.Reason}
	}

	cls := p.rules.Classify(query)
	state, _ = advance(state, true, false)
	state, _ = advance(state, true, cls.IsDistress())

	var response string
	var requiresHuman bool
	branch := observability.BranchGenerate
	status := "ok"

	switch state {
	case StateCrisis:
		branch = observability.BranchCrisis
		response = p.runCrisis(language)
		requiresHuman = true
		p.metrics.RecordCrisis(language)
		state, _ = advance(state, true, true)
	case StateGenerating:
		var fellBack bool
		response, fellBack = p.runGeneration(ctx, query, language)
		if fellBack {
			status = "fallback"
		}
		state, _ = advance(state, true, false)

		verdict := p.rules.Moderate(response)
		if !verdict.Safe {
			p.logger.Warn("response replaced by moderator", "filter", verdict.Reason)
			p.metrics.RecordSubstitution(verdict.Reason)
			response = verdict.SanitizedText
		}
		state, _ = advance(state, true, false)
	}

	if !state.Terminal() {
		// Unreachable with the transitions above; absorb rather than fail.
		p.logger.Error("pipeline ended in non-terminal state", "state", state.String())
	}

	if cls.Flagged() {
		p.emitAudit(query, response, cls, language, branch, requiresHuman)
	}

	p.metrics.RecordRequest(branch, status)
	return Outcome{
		Response:             response,
		RequiresHumanSupport: requiresHuman,
		Timestamp:            time.Now().UTC(),
	}, nil
}

// runCrisis returns the fixed pre-approved crisis message. It deliberately
// has no access to the backend.
func (p *Pipeline) runCrisis(language string) string {
	p.logger.Info("crisis branch taken", "language", language)
	return prompts.CrisisMessage(language)
}

// runGeneration calls the backend under the configured timeout. The second
// return is true when the text is a fallback explanation rather than
// generated output.
func (p *Pipeline) runGeneration(ctx context.Context, query, language string) (string, bool) {
	if p.backend == nil {
		return MsgNoBackend, true
	}

	genCtx, cancel := context.WithTimeout(ctx, p.genTimeout)
	defer cancel()

	start := time.Now()
	text, err := p.backend.Generate(genCtx, p.prompt(query, language), llm.GenerationParams{})
	elapsed := time.Since(start)

	if err != nil {
		kind := llm.KindOf(err)
		p.logger.Error("backend generation failed", "kind", string(kind), "error", err)
		p.metrics.RecordGeneration(string(kind), elapsed)
		return fallbackFor(kind), true
	}

	p.metrics.RecordGeneration("success", elapsed)
	return text, false
}

// fallbackFor maps a backend failure kind to its user-facing explanation.
func fallbackFor(kind llm.ErrKind) string {
	switch kind {
	case llm.ErrKindInvalidCredentials:
		return MsgInvalidCredentials
	case llm.ErrKindQuotaExceeded:
		return MsgQuotaExceeded
	case llm.ErrKindModelError:
		return MsgModelError
	default:
		return MsgBackendUnknown
	}
}

// emitAudit appends the flagged interaction. Best-effort: failures go to the
// process log fallback and never propagate. The append runs under its own
// timeout detached from the request context, so a crisis response stays
// deliverable even when storage is down or the caller has gone away.
func (p *Pipeline) emitAudit(query, response string, cls safety.Classification, language, branch string, requiresHuman bool) {
	meta := map[string]string{
		"language":               language,
		"branch":                 branch,
		"categories":             strings.Join(cls.Categories(), ","),
		"requires_human_support": boolString(requiresHuman),
	}
	rec := audit.NewRecord(query, response, meta)

	if p.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.auditTimeout)
		defer cancel()
		err := p.sink.Append(ctx, rec)
		if err == nil {
			return
		}
		p.logger.Error("audit append failed, falling back to process log", "error", err)
		p.metrics.RecordAuditFailure()
	}
	_ = p.fallback.Append(context.Background(), rec)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
