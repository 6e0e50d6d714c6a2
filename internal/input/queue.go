package input

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Queue is a bounded, non-blocking action queue drained by one worker.
//
// A single worker keeps actions in arrival order. Producers (HTTP handlers,
// websocket readers) never block: when the buffer is full the action is
// dropped and counted.
type Queue struct {
	actions    chan Action
	dispatcher Dispatcher
	wg         sync.WaitGroup

	// mu guards running and stopChan; each Start gets a fresh stopChan
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}

	// Metrics
	enqueued    atomic.Uint64
	processed   atomic.Uint64
	dropped     atomic.Uint64
	failed      atomic.Uint64
	avgWaitTime atomic.Int64 // nanoseconds, exponential moving average

	// OnDrop is called for every dropped action.
	OnDrop func(Action)
}

// QueueConfig holds configuration for the action queue
type QueueConfig struct {
	BufferSize int
}

// DefaultQueueConfig returns the default buffer size
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{BufferSize: 256}
}

// NewQueue creates a queue that feeds d.
func NewQueue(d Dispatcher, config QueueConfig) *Queue {
	if config.BufferSize <= 0 {
		config.BufferSize = 256
	}
	return &Queue{
		actions:    make(chan Action, config.BufferSize),
		dispatcher: d,
	}
}

// Start launches the worker. A stopped queue can be started again; actions
// enqueued while stopped are drained by the new worker.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	q.stopChan = make(chan struct{})

	log.Printf("🚀 Input queue starting, buffer size %d", cap(q.actions))

	q.wg.Add(1)
	go q.worker(q.stopChan)
}

// Stop signals the worker and waits for it to exit. Pending actions are discarded.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	q.running = false

	close(q.stopChan)
	q.wg.Wait()

	log.Printf("📊 Input queue stopped - enqueued: %d, processed: %d, dropped: %d",
		q.enqueued.Load(), q.processed.Load(), q.dropped.Load())
}

// Enqueue adds an action without blocking.
// Returns false if the queue is full and the action was dropped.
func (q *Queue) Enqueue(a Action) bool {
	if a.ReceivedAt.IsZero() {
		a.ReceivedAt = time.Now()
	}

	select {
	case q.actions <- a:
		q.enqueued.Add(1)
		return true
	default:
		n := q.dropped.Add(1)
		if n%100 == 1 {
			log.Printf("⚠️ Input queue full, dropped %s from %s (total dropped: %d)", a.Kind, a.Source, n)
		}
		if q.OnDrop != nil {
			q.OnDrop(a)
		}
		return false
	}
}

func (q *Queue) worker(stop <-chan struct{}) {
	defer q.wg.Done()

	for {
		select {
		case <-stop:
			return
		case a := <-q.actions:
			wait := time.Since(a.ReceivedAt)
			q.updateAvgWaitTime(wait)

			if wait > 100*time.Millisecond {
				log.Printf("⚠️ %s from %s waited %.1fms in queue",
					a.Kind, a.Source, float64(wait.Microseconds())/1000)
			}

			if err := q.dispatcher.Dispatch(a); err != nil {
				q.failed.Add(1)
				log.Printf("⚠️ Dropping %s from %s: %v", a.Kind, a.Source, err)
			}
			q.processed.Add(1)
		}
	}
}

func (q *Queue) updateAvgWaitTime(wait time.Duration) {
	current := q.avgWaitTime.Load()
	q.avgWaitTime.Store((current*9 + wait.Nanoseconds()) / 10)
}

// Stats returns current queue statistics
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Enqueued:       q.enqueued.Load(),
		Processed:      q.processed.Load(),
		Dropped:        q.dropped.Load(),
		Failed:         q.failed.Load(),
		Pending:        uint64(len(q.actions)),
		BufferSize:     uint64(cap(q.actions)),
		AvgWaitTimeMs:  float64(q.avgWaitTime.Load()) / 1e6,
		BufferUsagePct: float64(len(q.actions)) / float64(cap(q.actions)) * 100,
	}
}

// QueueStats holds queue metrics
type QueueStats struct {
	Enqueued       uint64  `json:"enqueued"`
	Processed      uint64  `json:"processed"`
	Dropped        uint64  `json:"dropped"`
	Failed         uint64  `json:"failed"`
	Pending        uint64  `json:"pending"`
	BufferSize     uint64  `json:"buffer_size"`
	AvgWaitTimeMs  float64 `json:"avg_wait_time_ms"`
	BufferUsagePct float64 `json:"buffer_usage_pct"`
}
