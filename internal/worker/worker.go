package worker

import (
	"context"
	"encoding/json"
	"time"

	"billzsync/internal/notify"
	"billzsync/internal/sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Worker consumes queued run requests and drives the sync pipeline. Queue
// deliveries are at-least-once; the pipeline's claim step makes duplicate
// requests harmless.
type Worker struct {
	reader   *kafka.Reader
	pipeline *sync.Pipeline
	logger   zerolog.Logger
}

func New(brokers string, pipeline *sync.Pipeline, logger zerolog.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{brokers},
		GroupID:        "billzsync-worker",
		Topic:          notify.TopicRequests,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		reader:   reader,
		pipeline: pipeline,
		logger:   logger,
	}
}

func (w *Worker) Start() {
	w.logger.Info().Msg("worker started, waiting for run requests")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Debug().Err(err).Msg("no message read")
			continue
		}

		var req notify.RunRequest
		if err := json.Unmarshal(message.Value, &req); err != nil {
			w.logger.Error().Err(err).Str("payload", string(message.Value)).Msg("failed to parse run request")
			continue
		}

		if err := w.pipeline.RunQueued(req.RunID); err != nil {
			w.logger.Error().Err(err).Str("run_id", req.RunID).Msg("queued run failed")
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info().Msg("stopping worker")
	w.reader.Close()
}
