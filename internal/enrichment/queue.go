package enrichment

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Job asks for one record's demographics to be backfilled.
type Job struct {
	RecordID string
	Suburb   string
	State    string
	Postcode string
}

// JobQueue is an in-memory queue of enrichment jobs. Pushes never block;
// a full queue rejects the job so callers (the HTTP handler, the sweeper)
// stay responsive.
type JobQueue struct {
	items    chan Job
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(Job) error
}

// NewJobQueue creates a job queue with the specified buffer size.
func NewJobQueue(bufferSize int, logger *logrus.Logger) *JobQueue {
	return &JobQueue{
		items:    make(chan Job, bufferSize),
		done:     make(chan struct{}),
		logger:   logger,
		handlers: make([]func(Job) error, 0),
	}
}

// Push adds a job to the queue.
func (q *JobQueue) Push(job Job) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- job:
		q.logger.WithField("record_id", job.RecordID).Debug("Pushed enrichment job to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each job.
func (q *JobQueue) Subscribe(handler func(Job) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing jobs in the queue.
func (q *JobQueue) Start() {
	go q.process()
}

func (q *JobQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case job := <-q.items:
			q.dispatch(job)
		}
	}
}

func (q *JobQueue) dispatch(job Job) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(job); err != nil {
			q.logger.WithError(err).WithField("record_id", job.RecordID).Error("Handler failed to process enrichment job")
		}
	}
}

// Close stops the queue and prevents new jobs from being added. The items
// channel is left open: closing it would race the process loop's select and
// could hand a zero-value job to handlers.
func (q *JobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	return nil
}

// Len returns the current number of queued jobs.
func (q *JobQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *JobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
