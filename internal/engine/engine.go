// Package engine collects measurement events published by receivers, keeps
// an in-memory view per run, and periodically flushes batches to the
// configured storage backends.
package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"NetGauge/internal/alerter"
	"NetGauge/internal/config"
	"NetGauge/internal/engine/store"
	"NetGauge/internal/export"
	"NetGauge/internal/model"
	"NetGauge/internal/notification"
)

// Engine orchestrates the subscriber, the worker pool, the writers, and the
// optional run alerter.
type Engine struct {
	sub     *export.Subscriber
	store   *store.Store
	writers []model.Writer
	alerter *alerter.Alerter

	// Worker pool for concurrent event processing
	eventChannel chan export.Envelope
	numWorkers   int
	workerWg     sync.WaitGroup

	// Guards eventChannel against sends from subscriber callbacks that are
	// still in flight when Stop closes it.
	pubMu   sync.RWMutex
	stopped bool

	// Flushing resources
	flushInterval time.Duration
	done          chan struct{}
	flusherWg     sync.WaitGroup
}

// New creates an Engine from the configuration: a NATS subscription plus one
// writer per enabled writer definition.
func New(cfg *config.Config) (*Engine, error) {
	flushInterval, err := time.ParseDuration(cfg.Engine.FlushInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid flush interval: %w", err)
	}
	if flushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be a positive duration")
	}

	numWorkers := cfg.Engine.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	channelSize := cfg.Engine.SizeOfEventChannel
	if channelSize <= 0 {
		channelSize = 1024
	}

	var writers []model.Writer
	for _, def := range cfg.Engine.Writers {
		if !def.Enabled {
			continue
		}
		switch def.Type {
		case "clickhouse":
			w, err := NewClickHouseWriter(def.ClickHouse)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		case "text":
			w, err := NewTextWriter(def.Text)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		case "gob":
			w, err := NewGobWriter(def.Gob)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		default:
			return nil, fmt.Errorf("unknown writer type: %s", def.Type)
		}
	}

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		// For now, we only initialize the email notifier. This can be expanded later.
		if cfg.SMTP.Host != "" {
			alertr = alerter.New(cfg.Alerter.Rules, notification.NewEmailNotifier(cfg.SMTP))
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	sub, err := export.NewSubscriber(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}

	return &Engine{
		sub:           sub,
		store:         store.New(),
		writers:       writers,
		alerter:       alertr,
		eventChannel:  make(chan export.Envelope, channelSize),
		numWorkers:    numWorkers,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}, nil
}

// Store exposes the in-memory run view for the API layer.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Start launches the worker pool, the flusher, and the subscription.
func (e *Engine) Start() error {
	e.workerWg.Add(e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker()
	}
	log.Printf("Engine started with %d workers.", e.numWorkers)

	e.flusherWg.Add(1)
	go e.runFlusher()
	log.Printf("Started flusher with interval %s for %d writers.", e.flushInterval, len(e.writers))

	return e.sub.Start(e.enqueue)
}

// enqueue hands a subscriber event to the worker pool. The read lock keeps
// the channel open for the duration of the send; Stop takes the write lock
// before closing it, so a callback racing with shutdown drops the event
// instead of panicking on a closed channel.
func (e *Engine) enqueue(env export.Envelope) {
	e.pubMu.RLock()
	defer e.pubMu.RUnlock()
	if e.stopped {
		return
	}
	select {
	case e.eventChannel <- env:
	default:
		log.Println("Engine: event channel is full, dropping event.")
	}
}

func (e *Engine) worker() {
	defer e.workerWg.Done()
	for env := range e.eventChannel {
		switch env.Type {
		case export.EventReading:
			if env.Reading == nil {
				log.Printf("Engine: reading event without payload for run '%s'", env.RunID)
				continue
			}
			e.store.AddReading(env.RunID, *env.Reading)
		case export.EventSummary:
			if env.Summary == nil {
				log.Printf("Engine: summary event without payload for run '%s'", env.RunID)
				continue
			}
			e.store.SetSummary(env.RunID, *env.Summary)
		default:
			log.Printf("Engine: unknown event type '%s'", env.Type)
		}
	}
}

// runFlusher periodically drains pending batches into every writer, with a
// final flush on shutdown.
func (e *Engine) runFlusher() {
	defer e.flusherWg.Done()
	ticker := time.NewTicker(e.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.flush()
		case <-e.done:
			e.flush()
			return
		}
	}
}

func (e *Engine) flush() {
	readings, summaries := e.store.DrainPending()
	if len(readings) == 0 && len(summaries) == 0 {
		return
	}

	for _, writer := range e.writers {
		for runID, batch := range readings {
			if err := writer.WriteReadings(runID, batch); err != nil {
				log.Printf("Error writing readings for run '%s': %v", runID, err)
			}
		}
		for runID, summary := range summaries {
			if err := writer.WriteSummary(runID, summary); err != nil {
				log.Printf("Error writing summary for run '%s': %v", runID, err)
			}
		}
	}

	if e.alerter != nil {
		for runID, summary := range summaries {
			e.alerter.Evaluate(runID, summary)
		}
	}
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop() {
	log.Println("Engine stopping...")
	// 1. Stop accepting new events. The write lock waits out any callback
	// still inside enqueue before the channel closes.
	e.sub.Close()
	e.pubMu.Lock()
	e.stopped = true
	e.pubMu.Unlock()

	// 2. Wait for the workers to drain buffered events.
	close(e.eventChannel)
	e.workerWg.Wait()

	// 3. Signal the flusher to take a final flush and exit.
	close(e.done)
	e.flusherWg.Wait()

	// 4. Release the writers.
	for _, writer := range e.writers {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing writer: %v", err)
		}
	}
	log.Println("Engine stopped.")
}
