package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kkolinko/jtrac/internal/events"
	"github.com/kkolinko/jtrac/internal/idgen"
	"github.com/kkolinko/jtrac/internal/store"
)

// Destination is the interface for an export target (S3, filesystem, etc.).
type Destination interface {
	// Write sends the XML payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic full exports to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	pub          events.Publisher
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, pub events.Publisher, logger *slog.Logger) *Scheduler {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		pub:          pub,
		logger:       logger,
	}
}

// Start begins periodic exports. It runs an initial export immediately,
// then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	jobID, err := idgen.GenerateWithPrefix("exp-")
	if err != nil {
		s.logger.Error("export job id generation failed", "err", err)
		return
	}

	var buf bytes.Buffer
	n, err := WriteXML(ctx, s.store, &buf)
	if err != nil {
		s.logger.Error("export failed", "job", jobID, "err", err)
		return
	}
	data := buf.Bytes()

	for i, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("export destination write failed", "job", jobID, "destination", fmt.Sprintf("%d", i), "err", err)
		}
	}

	if err := s.pub.Publish(ctx, events.TopicExportCompleted, events.ExportCompleted{
		JobID: jobID,
		Items: n,
	}); err != nil {
		s.logger.Warn("failed to publish export event", "job", jobID, "err", err)
	}

	s.logger.Info("export completed", "job", jobID, "items", n, "destinations", len(s.destinations), "bytes", len(data))
}
