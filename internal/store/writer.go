package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sadopc/studylog/internal/logging"
	"github.com/sadopc/studylog/internal/study"
)

var ErrWriterClosed = errors.New("writer closed")

type writeJob struct {
	key   string
	value string
	done  chan error
}

// Writer persists collection snapshots in the background. Snapshots are
// encoded when enqueued and written one at a time in enqueue order, so the
// last enqueued snapshot for a key is the one left in the store.
type Writer struct {
	kv  KV
	log *slog.Logger

	mu      sync.Mutex
	queue   []writeJob
	closing bool

	wake     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func NewWriter(kv KV, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Writer{
		kv:       kv,
		log:      logger,
		wake:     make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
	go w.run()
	return w
}

// SaveSessions enqueues the session log. It never blocks on I/O.
func (w *Writer) SaveSessions(sessions []study.Session) <-chan error {
	return w.enqueue(KeySessions, sessions)
}

// SaveGoals enqueues the goal map. It never blocks on I/O.
func (w *Writer) SaveGoals(goals study.GoalMap) <-chan error {
	return w.enqueue(KeyGoals, goals)
}

// Close writes everything still queued and stops the writer.
func (w *Writer) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closing = true
		w.mu.Unlock()
		w.signal()
	})
	<-w.finished
}

func (w *Writer) enqueue(key string, v any) <-chan error {
	done := make(chan error, 1)

	data, err := json.Marshal(v)
	if err != nil {
		done <- fmt.Errorf("encode %s: %w", key, err)
		return done
	}

	w.mu.Lock()
	if w.closing {
		w.mu.Unlock()
		done <- ErrWriterClosed
		return done
	}
	w.queue = append(w.queue, writeJob{key: key, value: string(data), done: done})
	w.mu.Unlock()

	w.signal()
	return done
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.finished)
	for {
		w.mu.Lock()
		batch := w.queue
		w.queue = nil
		closing := w.closing
		w.mu.Unlock()

		for _, job := range batch {
			err := w.kv.Set(job.key, job.value)
			if err != nil {
				w.log.Error("write snapshot", "key", job.key, "err", err)
			} else {
				w.log.Debug("wrote snapshot", "key", job.key, "bytes", len(job.value))
			}
			job.done <- err
		}

		if len(batch) > 0 {
			continue
		}
		if closing {
			return
		}
		<-w.wake
	}
}
