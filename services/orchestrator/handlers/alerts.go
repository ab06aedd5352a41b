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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
	"github.com/AleutianAI/campus-compass/services/orchestrator/datatypes"
)

// ListAlerts handles GET /alerts: the 10 most recent active, approved
// alerts. With no store configured the surface still works, it just has no
// alerts to show.
func ListAlerts(store audit.AlertStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusOK, gin.H{"alerts": []datatypes.AlertResponse{}})
			return
		}

		alerts, err := store.ListActiveAlerts(c.Request.Context())
		if err != nil {
			slog.Error("failed to list alerts", "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "failed to list alerts"})
			return
		}

		out := make([]datatypes.AlertResponse, 0, len(alerts))
		for _, a := range alerts {
			out = append(out, datatypes.AlertResponse{
				ID:        a.ID,
				Title:     a.Title,
				Message:   a.Message,
				Type:      string(a.Type),
				CreatedAt: a.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"alerts": out})
	}
}

// CreateAlert handles POST /admin/alerts.
func CreateAlert(store audit.AlertStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, datatypes.ErrorResponse{Error: "alert storage is not configured"})
			return
		}

		var req datatypes.CreateAlertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid input"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid input"})
			return
		}

		alert, err := store.CreateAlert(c.Request.Context(), audit.Alert{
			Title:    req.Title,
			Message:  req.Message,
			Type:     audit.AlertType(req.Type),
			Active:   req.Active,
			Approved: req.Approved,
		})
		if err != nil {
			slog.Error("failed to store alert", "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "failed to store alert"})
			return
		}

		slog.Info("alert created", "id", alert.ID, "type", string(alert.Type))
		c.JSON(http.StatusCreated, datatypes.AlertResponse{
			ID:        alert.ID,
			Title:     alert.Title,
			Message:   alert.Message,
			Type:      string(alert.Type),
			CreatedAt: alert.CreatedAt,
		})
	}
}
