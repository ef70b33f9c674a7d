package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthResponse is the GET /healthz body.
type HealthResponse struct {
	Status    string            `json:"status"`
	StoreID   string            `json:"store_id"`
	Database  string            `json:"database"`
	Timestamp time.Time         `json:"timestamp"`
	Metrics   map[string]string `json:"metrics"`
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		StoreID:   h.storeID,
		Database:  "ok",
		Timestamp: time.Now(),
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	response.Metrics["tracked_senders"] = strconv.Itoa(h.limiter.Size())

	if h.reminder != nil && h.reminder.IsRunning() {
		response.Metrics["reminder"] = "running"
		response.Metrics["next_run"] = h.reminder.GetNextRun().Format(time.RFC3339)
	} else {
		response.Metrics["reminder"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
