// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/campus-compass/services/orchestrator/datatypes"
	"github.com/AleutianAI/campus-compass/services/orchestrator/pipeline"
)

// WellbeingChat handles POST /wellbeing/chat.
//
// A gate rejection is the only user-visible failure (400 with the reason);
// everything else comes back 200 with supportive text, because this surface
// must never show a broken state to a potentially distressed user.
func WellbeingChat(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.WellbeingChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Info("malformed chat request", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid input"})
			return
		}
		if err := req.Validate(); err != nil {
			slog.Info("chat request failed validation", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid input"})
			return
		}

		out, err := p.Process(c.Request.Context(), req.Query, req.Language)
		if err != nil {
			var verr *pipeline.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: verr.Reason})
				return
			}
			// Process absorbs everything else; keep the surface intact anyway.
			slog.Error("unexpected pipeline error", "error", err)
			c.JSON(http.StatusOK, datatypes.WellbeingChatResponse{
				Response:  pipeline.MsgUnexpected,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, datatypes.WellbeingChatResponse{
			Response:             out.Response,
			RequiresHumanSupport: out.RequiresHumanSupport,
			Timestamp:            out.Timestamp.UTC().Format(time.RFC3339),
		})
	}
}
