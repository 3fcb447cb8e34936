package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"billzsync/internal/models"
	"billzsync/internal/notify"
	"billzsync/internal/staging"
	"billzsync/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type SyncHandler struct {
	pipeline *sync.Pipeline
	runs     *staging.RunStore
	queue    *notify.Queue
	logger   zerolog.Logger
}

func NewSyncHandler(pipeline *sync.Pipeline, runs *staging.RunStore, queue *notify.Queue, logger zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		pipeline: pipeline,
		runs:     runs,
		queue:    queue,
		logger:   logger,
	}
}

// Run triggers a synchronous sync. A run already in flight answers 409 with
// the active run's id.
func (h *SyncHandler) Run(c *gin.Context) {
	run, err := h.pipeline.Run()
	if errors.Is(err, sync.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already running", "run_id": run.ID})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to start sync run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sync"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

// Schedule enqueues a run for the worker unless one is already queued or
// running.
func (h *SyncHandler) Schedule(c *gin.Context) {
	active, err := h.runs.Active()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to check active run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check active run"})
		return
	}
	if active != nil {
		c.JSON(http.StatusOK, gin.H{"status": "already_scheduled", "run_id": active.ID})
		return
	}

	run, err := h.runs.Create(models.RunQueued)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
		return
	}

	if err := h.queue.EnqueueRun(run.ID); err != nil {
		h.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to enqueue run")
		run.Status = models.RunFailed
		run.Error = err.Error()
		if ferr := h.runs.Finish(run); ferr != nil {
			h.logger.Error().Err(ferr).Str("run_id", run.ID).Msg("failed to persist run failure")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue run"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "run_id": run.ID})
}

// Runs lists recent sync runs, newest first.
func (h *SyncHandler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.runs.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}
