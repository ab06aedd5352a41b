// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prompts holds the fixed prompt templates and pre-approved user
// messages for the support surface.
//
// The crisis messages are NOT prompts: they go to the user verbatim, never
// through a model. Only the wellbeing and information templates are sent to
// a backend.
package prompts

import "fmt"

// Hotline is the campus crisis hotline. It appears verbatim in the crisis
// messages in every supported language.
const Hotline = "1800-HELP-NOW"

// LanguageHindi selects the Hindi variants. Any other value falls back to
// English.
const LanguageHindi = "hindi"

// CrisisMessage returns the fixed, pre-approved reply for the crisis branch.
// No model output is ever substituted for this text.
func CrisisMessage(language string) string {
	if language == LanguageHindi {
		return "मैं देख रहा हूँ कि आप कठिन समय से गुज़र रहे हैं। कृपया तुरंत मानव सहायता प्राप्त करें। हमारी संकट हॉटलाइन: " + Hotline + "। आप अकेले नहीं हैं।"
	}
	return "I can see you're going through a difficult time. Please seek immediate human support. Our crisis hotline: " + Hotline + ". You are not alone."
}

const wellbeingGuidelines = `You are a supportive, calm, and empathetic AI assistant on a campus wellbeing platform.

CRITICAL SAFETY RULES:
1. NEVER provide medical diagnosis, treatment plans, or medication advice
2. NEVER provide legal advice or act as a legal authority
3. NEVER encourage harmful behaviors
4. Use a calm, supportive, and non-judgmental tone at all times
5. Provide general information and coping strategies only
6. Always encourage professional help for serious concerns
7. Keep responses concise (2-3 paragraphs maximum)
8. Use simple, clear language accessible to all users
9. If user mentions self-harm or suicide, immediately provide crisis resources
10. Position yourself as an assistant, not an authority

User's question: %q

Provide a helpful, supportive response following all guidelines above.`

// Wellbeing builds the main companion prompt around the user query.
func Wellbeing(query, language string) string {
	prompt := fmt.Sprintf(wellbeingGuidelines, query)
	if language == LanguageHindi {
		prompt += "\n\nRespond in Hindi (Devanagari script). Be supportive, clear, and accessible."
	}
	return prompt
}

const informationGuidelines = `You are a helpful campus information assistant. Provide accurate, verified information about campus resources, services, and general questions.

Guidelines:
1. Only provide information you're confident about
2. If unsure, direct users to official campus resources
3. Keep responses clear and concise
4. Use simple language

User's question: %q

Provide helpful information or direct to appropriate resources.`

// Information builds the campus-information prompt around the user query.
func Information(query, language string) string {
	prompt := fmt.Sprintf(informationGuidelines, query)
	if language == LanguageHindi {
		prompt += "\n\nRespond in Hindi (Devanagari script)."
	}
	return prompt
}
