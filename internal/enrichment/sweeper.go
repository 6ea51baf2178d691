package enrichment

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/store"
)

// Sweeper periodically scans the record store and queues enrichment jobs
// for records that still lack demographics. An initial sweep runs at
// startup so freshly imported datasets get backfilled without waiting a
// full interval.
type Sweeper struct {
	store    store.RecordStore
	queue    *JobQueue
	tracker  *Tracker
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(recordStore store.RecordStore, queue *JobQueue, tracker *Tracker, interval time.Duration, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		store:    recordStore,
		queue:    queue,
		tracker:  tracker,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the sweeper.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	s.logger.Info("Running startup enrichment sweep")
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep queues one enrichment job per record without demographics. Records
// already pending are skipped; a full queue ends the sweep early and the
// remainder is picked up next time.
func (s *Sweeper) Sweep() {
	records, err := s.store.List()
	if err != nil {
		s.logger.WithError(err).Error("Sweep failed to list records")
		return
	}

	queued := 0
	for _, record := range records {
		if record.Demographics != nil {
			continue
		}
		if s.tracker.Get(record.ID) == StatusPending {
			continue
		}

		err := s.queue.Push(Job{
			RecordID: record.ID,
			Suburb:   record.Suburb,
			State:    string(record.State),
			Postcode: record.Postcode,
		})
		if errors.Is(err, ErrQueueFull) {
			s.logger.WithField("queued", queued).Warn("Enrichment queue full, ending sweep early")
			return
		}
		if err != nil {
			s.logger.WithError(err).Error("Failed to queue enrichment job")
			return
		}
		queued++
	}

	if queued > 0 {
		s.logger.WithField("count", queued).Info("Queued enrichment jobs")
	}
}
