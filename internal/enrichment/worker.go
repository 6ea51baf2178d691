package enrichment

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/demographics"
	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/models"
	"github.com/dewvow/housepulse/internal/store"
)

// Pool consumes enrichment jobs: it resolves the record's locality, fetches
// demographics for its postcode and persists the enriched record. Fetch
// failures degrade to a failed status and never surface as errors to the
// caller that queued the job; persistence failures are logged and also mark
// the record failed, since the fetched value was lost.
type Pool struct {
	store     store.RecordStore
	gaz       *gazetteer.Loader
	client    *demographics.Client
	tracker   *Tracker
	queue     *JobQueue
	logger    *logrus.Logger
	count     int
	jobs      chan Job
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a worker pool with count workers.
func NewPool(recordStore store.RecordStore, gaz *gazetteer.Loader, client *demographics.Client, tracker *Tracker, queue *JobQueue, count int, logger *logrus.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		store:   recordStore,
		gaz:     gaz,
		client:  client,
		tracker: tracker,
		queue:   queue,
		logger:  logger,
		count:   count,
		jobs:    make(chan Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes the pool to the job queue and launches the workers. The
// queue dispatches each job to every subscriber, so the pool registers a
// single handler and fans out internally.
func (p *Pool) Start() {
	p.queue.Subscribe(func(job Job) error {
		select {
		case p.jobs <- job:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})

	for i := 0; i < p.count; i++ {
		p.waitGroup.Add(1)
		go p.worker()
	}
}

// Stop gracefully shuts down the pool.
func (p *Pool) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *Pool) worker() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			if err := p.processJob(job); err != nil {
				p.logger.WithError(err).WithField("record_id", job.RecordID).Error("Failed to process enrichment job")
			}
		}
	}
}

// processJob backfills demographics for one record.
func (p *Pool) processJob(job Job) error {
	record, found, err := p.store.Get(job.RecordID)
	if err != nil {
		p.tracker.Set(job.RecordID, StatusFailed)
		return fmt.Errorf("failed to load record for enrichment: %w", err)
	}
	if !found {
		p.tracker.Forget(job.RecordID)
		return nil
	}

	// Cache-or-skip: a record that already carries demographics is never
	// fetched again.
	if record.Demographics != nil {
		p.tracker.Set(job.RecordID, StatusAvailable)
		return nil
	}

	p.tracker.Set(job.RecordID, StatusPending)

	// The statistical-area code comes from the gazetteer match; without a
	// match there is nothing to enrich from.
	loc, ok := p.gaz.FindDetails(record.Suburb, record.State, record.Postcode)
	if !ok {
		p.logger.WithFields(logrus.Fields{
			"record_id": job.RecordID,
			"suburb":    record.Suburb,
		}).Debug("Skipping enrichment, no gazetteer match")
		p.tracker.Set(job.RecordID, StatusFailed)
		return nil
	}

	sscCode := 0
	if loc.SSCCode != nil {
		sscCode = *loc.SSCCode
	}

	demo := p.client.Fetch(sscCode, record.Postcode, loc.MedianIncome, loc.Population)
	if demo == nil {
		p.tracker.Set(job.RecordID, StatusFailed)
		return nil
	}

	record.Demographics = demo
	if err := p.store.Upsert(record); err != nil {
		p.tracker.Set(job.RecordID, StatusFailed)
		return fmt.Errorf("failed to persist enriched record: %w", err)
	}

	p.tracker.Set(job.RecordID, StatusAvailable)
	p.logger.WithFields(logrus.Fields{
		"record_id": job.RecordID,
		"postcode":  record.Postcode,
	}).Info("Backfilled demographics")
	return nil
}

// StatusFor reports the three-way demographics state for a record:
// available when the record carries a value, otherwise whatever the
// tracker knows (not-requested, pending or failed).
func (p *Pool) StatusFor(record models.SuburbRecord) Status {
	if record.Demographics != nil {
		return StatusAvailable
	}
	return p.tracker.Get(record.ID)
}
