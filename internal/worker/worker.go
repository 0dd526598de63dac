package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/internal/metrics"
)

const saveTimeout = 5 * time.Second

// Saver writes conversation records to a sink in the background so request
// handlers never wait on persistence.
type Saver struct {
	workerID string
	sink     history.Sink
	records  chan history.Record
	workers  int
	logger   zerolog.Logger
}

// New creates a Saver with a queue of buffer records drained by workers
// goroutines.
func New(sink history.Sink, buffer, workers int, logger zerolog.Logger) *Saver {
	if workers < 1 {
		workers = 1
	}
	return &Saver{
		workerID: fmt.Sprintf("HistorySaver-%d", os.Getpid()),
		sink:     sink,
		records:  make(chan history.Record, buffer),
		workers:  workers,
		logger:   logger,
	}
}

// Submit queues rec for saving. It never blocks; when the queue is full the
// record is dropped and false is returned.
func (s *Saver) Submit(rec history.Record) bool {
	select {
	case s.records <- rec:
		return true
	default:
		metrics.HistoryDropsTotal.Inc()
		s.logger.Warn().Str("record_id", rec.ID).Msg("history queue full, dropping record")
		return false
	}
}

// Run saves queued records until ctx is canceled, then flushes whatever is
// still buffered.
func (s *Saver) Run(ctx context.Context) {
	s.logger.Info().Str("worker", s.workerID).Int("workers", s.workers).Msg("history saver started")

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case rec := <-s.records:
					s.save(rec)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()

	for {
		select {
		case rec := <-s.records:
			s.save(rec)
		default:
			s.logger.Info().Str("worker", s.workerID).Msg("history saver shutting down")
			return
		}
	}
}

func (s *Saver) save(rec history.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.sink.Save(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("record_id", rec.ID).Msg("failed to save conversation")
		return
	}
	s.logger.Debug().Str("record_id", rec.ID).Str("kind", string(rec.Kind)).Msg("conversation saved")
}
