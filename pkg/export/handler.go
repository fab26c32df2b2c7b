package export

import (
	"context"
	"fmt"
	"time"

	"github.com/els0r/fluere/pkg/plugins"
	"github.com/els0r/fluere/pkg/types"
	"github.com/els0r/telemetry/logging"
)

// writeoutsChanDepth sets the maximum number of writeouts that can be
// queued before the capture loop blocks
const writeoutsChanDepth = 100

type writeout struct {
	path        string
	records     []*types.FlowRecord
	atTimestamp time.Time
}

// Handler runs the asynchronous exporter: the capture loop queues
// batches of completed flow records, a single goroutine drains them to
// disk. Writeouts run parallel to the next capture interval but are
// serialized against each other.
type Handler struct {
	writeoutsChan chan *writeout
	dispatcher    *plugins.Dispatcher
	done          chan struct{}

	// firstErr retains the first writeout failure; later batches are
	// still attempted so a single bad path does not lose the whole run
	firstErr error
}

// NewHandler creates a Handler; records of every writeout are also
// submitted to the given plugin dispatcher (which may be nil)
func NewHandler(dispatcher *plugins.Dispatcher) *Handler {
	return &Handler{
		writeoutsChan: make(chan *writeout, writeoutsChanDepth),
		dispatcher:    dispatcher,
		done:          make(chan struct{}),
	}
}

// Queue hands a batch of records to the writeout goroutine. The batch
// may be empty, in which case only the (empty) file with its header is
// produced so that every rotation leaves a trace.
func (h *Handler) Queue(path string, records []*types.FlowRecord, at time.Time) {
	h.writeoutsChan <- &writeout{
		path:        path,
		records:     records,
		atTimestamp: at,
	}
}

// Close signals that no further writeouts will be queued
func (h *Handler) Close() {
	close(h.writeoutsChan)
}

// Wait blocks until all queued writeouts have completed and returns the
// first writeout failure, if any. Only valid after Close.
func (h *Handler) Wait() error {
	<-h.done
	return h.firstErr
}

// HandleWriteouts starts the writeout goroutine
func (h *Handler) HandleWriteouts(ctx context.Context) {
	logger := logging.FromContext(ctx)

	go func() {
		logger.Info("starting writeout handler")

		for wo := range h.writeoutsChan {
			t0 := time.Now()

			if err := h.write(wo); err != nil {
				logger.With("path", wo.path).Errorf("writeout failed: %v", err)
				if h.firstErr == nil {
					h.firstErr = err
				}
				continue
			}

			if h.dispatcher != nil {
				h.dispatcher.Submit(wo.records)
			}

			elapsed := time.Since(t0).Round(time.Millisecond)
			logger.With(
				"path", wo.path,
				"count", len(wo.records),
				"rotation", wo.atTimestamp.Format(time.RFC3339),
				"elapsed", elapsed.String(),
			).Info("completed writeout")
		}

		logger.Info("completed all writeouts")
		close(h.done)
	}()
}

func (h *Handler) write(wo *writeout) error {
	writer, err := NewWriter(wo.path)
	if err != nil {
		return err
	}

	if err := writer.WriteRecords(wo.records); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", wo.path, err)
	}

	return nil
}
