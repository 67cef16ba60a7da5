package display

import (
	"context"
	"log"
	"sync"
	"time"
)

// Poller recomputes the snapshot on a fixed interval and caches the latest
// result. There is no push channel; readers are eventually consistent within
// one interval. Close stops the timer for good.
type Poller struct {
	aggregator *Aggregator
	interval   time.Duration

	mu       sync.RWMutex
	latest   Snapshot
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewPoller(aggregator *Aggregator, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		aggregator: aggregator,
		interval:   interval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run polls until Close is called. The first tick happens immediately so a
// fresh board never starts blank.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)
	p.refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.refresh(ctx)
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()
	snapshot, err := p.aggregator.Build(tickCtx, "")
	if err != nil {
		log.Printf("display poll error: %v", err)
		return
	}
	p.mu.Lock()
	p.latest = snapshot
	p.mu.Unlock()
}

// Latest returns the most recent snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Close stops the poll loop and waits for it to exit.
func (p *Poller) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
