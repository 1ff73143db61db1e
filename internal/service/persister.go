package service

import (
	"context"
	"log"
	"sync"
	"time"

	"homecare/internal/model"
)

const persistTimeout = 10 * time.Second

// persister writes snapshots on a single background worker. State
// transitions stay synchronous and immediately visible; the worker always
// flushes the latest snapshot and collapses intermediate writes, so a
// rapid mutation burst cannot reach the backend out of order. Write
// errors are logged, never surfaced to the mutating caller.
type persister struct {
	gateway SnapshotGateway

	mu      sync.Mutex
	pending *model.Snapshot
	closed  bool

	kick chan struct{}
	done chan struct{}
}

func newPersister(gateway SnapshotGateway) *persister {
	p := &persister{
		gateway: gateway,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// enqueue replaces any not-yet-written snapshot with this one and wakes
// the worker.
func (p *persister) enqueue(snap model.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = &snap
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Stop flushes the latest queued snapshot and waits for the worker to
// exit. Safe to call more than once.
func (p *persister) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.kick)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *persister) run() {
	defer close(p.done)
	for range p.kick {
		p.flush()
	}
	p.flush()
}

func (p *persister) flush() {
	for {
		p.mu.Lock()
		snap := p.pending
		p.pending = nil
		p.mu.Unlock()
		if snap == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := p.gateway.Save(ctx, *snap); err != nil {
			log.Printf("[warn] persist snapshot: %v", err)
		}
		cancel()
	}
}
