// internal/handlers/maintenance.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/anvikram/stocktrack-be/internal/workers"
)

// MaintenanceHandler enqueues background maintenance jobs
type MaintenanceHandler struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(client *asynq.Client, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		client: client,
		logger: logger.With(slog.String("handler", "maintenance")),
	}
}

// TriggerPhotoSweep handles POST /api/v1/maintenance/photo-sweep
func (h *MaintenanceHandler) TriggerPhotoSweep(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, workers.TypePhotoSweep)
}

// TriggerLedgerAudit handles POST /api/v1/maintenance/ledger-audit
func (h *MaintenanceHandler) TriggerLedgerAudit(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, workers.TypeLedgerAudit)
}

func (h *MaintenanceHandler) enqueue(w http.ResponseWriter, r *http.Request, taskType string) {
	ctx := r.Context()

	task := asynq.NewTask(taskType, nil)
	info, err := h.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue maintenance task",
			slog.String("type", taskType),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to enqueue task")
		return
	}

	h.logger.InfoContext(ctx, "maintenance task enqueued",
		slog.String("type", taskType),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))

	respondJSON(h.logger, w, http.StatusAccepted, map[string]string{
		"task_id": info.ID,
		"type":    taskType,
		"status":  "queued",
	})
}
