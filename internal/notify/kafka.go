package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billzsync/internal/models"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	// TopicEvents carries sync.completed notifications for downstream
	// consumers.
	TopicEvents = "sync-events"
	// TopicRequests carries queued run requests consumed by the worker.
	TopicRequests = "sync-requests"
)

// Event is the envelope published to the events topic.
type Event struct {
	Type      string    `json:"type"`
	Records   int       `json:"records"`
	RemoteIDs []string  `json:"remote_ids"`
	Timestamp time.Time `json:"timestamp"`
}

// RunRequest is the payload the schedule endpoint enqueues and the worker
// consumes.
type RunRequest struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// KafkaNotifier publishes batch-completion events.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewKafkaNotifier(brokers string, logger zerolog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    TopicEvents,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (n *KafkaNotifier) SyncCompleted(records []models.StagingRecord) error {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.RemoteProductID)
	}

	event := Event{
		Type:      "sync.completed",
		Records:   len(records),
		RemoteIDs: ids,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("failed to publish sync.completed: %w", err)
	}

	n.logger.Debug().Int("records", len(records)).Msg("published sync.completed")
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Queue enqueues run requests for the worker.
type Queue struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewQueue(brokers string, logger zerolog.Logger) *Queue {
	return &Queue{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    TopicRequests,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (q *Queue) EnqueueRun(runID string) error {
	payload, err := json.Marshal(RunRequest{RunID: runID, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal run request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := q.writer.WriteMessages(ctx, kafka.Message{Key: []byte(runID), Value: payload}); err != nil {
		return fmt.Errorf("failed to enqueue run %s: %w", runID, err)
	}

	q.logger.Info().Str("run_id", runID).Msg("run request enqueued")
	return nil
}

func (q *Queue) Close() error {
	return q.writer.Close()
}

// NopNotifier drops notifications, used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) SyncCompleted([]models.StagingRecord) error { return nil }
