package service

import (
	"context"
	"log"
	"time"

	"github.com/chain-board/store"
)

type pendingTx struct {
	added time.Time
	fails int
}

// ReceiptWatcher tracks the set of pending transaction hashes and polls the
// node for their receipts as one batch per tick, over a single connection per
// tick. A transaction leaves the set when its receipt lands, when its poll
// failure budget is spent, or when it has waited longer than MaxWait.
type ReceiptWatcher struct {
	store *store.Store
	info  InfoFetcher
	dial  ChainDialer
	cfg   Config

	add      chan string
	pendings map[string]*pendingTx

	skipTicks int
	backoff   uint
}

func NewReceiptWatcher(st *store.Store, info InfoFetcher, dial ChainDialer, cfg Config) *ReceiptWatcher {
	return &ReceiptWatcher{
		store:    st,
		info:     info,
		dial:     dial,
		cfg:      cfg,
		add:      make(chan string, 16),
		pendings: make(map[string]*pendingTx),
	}
}

// Watch registers txHash for confirmation polling.
func (w *ReceiptWatcher) Watch(txHash string) {
	w.add <- txHash
}

// Run drives the poll loop until ctx is cancelled.
func (w *ReceiptWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case hash := <-w.add:
			w.pendings[hash] = &pendingTx{added: time.Now()}
		case <-ticker.C:
			if len(w.pendings) == 0 {
				continue
			}
			if w.skipTicks > 0 {
				w.skipTicks--
				continue
			}
			if err := w.pollOnce(ctx); err != nil {
				if w.backoff < 5 {
					w.backoff++
				}
				w.skipTicks = 1 << w.backoff
				log.Printf("receipt poll: %v (backing off %d ticks)", err, w.skipTicks)
			} else {
				w.backoff = 0
			}
		case <-ctx.Done():
			log.Printf("stop receipt watcher")
			return
		}
	}
}

// pollOnce dials a fresh connection and asks for every pending receipt. A
// returned error means the whole tick failed before any receipt was read.
func (w *ReceiptWatcher) pollOnce(ctx context.Context) error {
	info, err := w.info.Fetch(ctx)
	if err != nil {
		w.chargeAll()
		return err
	}
	c, err := w.dial(ctx, info)
	if err != nil {
		w.chargeAll()
		return err
	}
	defer c.Close()

	for hash, p := range w.pendings {
		rec, err := c.Receipt(ctx, hash)
		switch {
		case err != nil:
			log.Printf("receipt %s: %v", hash, err)
			w.charge(hash, p)
		case rec == nil:
			// not mined yet
			if time.Since(p.added) > w.cfg.MaxWait {
				w.abandon(hash)
			}
		case rec.Succeeded():
			if err := w.store.ApplyConfirmed(hash); err != nil {
				log.Printf("confirm %s: %v", hash, err)
			}
			delete(w.pendings, hash)
		default:
			// mined but reverted
			w.abandon(hash)
		}
	}
	return nil
}

func (w *ReceiptWatcher) chargeAll() {
	for hash, p := range w.pendings {
		w.charge(hash, p)
	}
}

func (w *ReceiptWatcher) charge(hash string, p *pendingTx) {
	p.fails++
	if p.fails > w.cfg.FailBudget {
		w.abandon(hash)
	}
}

func (w *ReceiptWatcher) abandon(hash string) {
	if err := w.store.ApplyFailed(hash); err != nil {
		log.Printf("fail %s: %v", hash, err)
	}
	delete(w.pendings, hash)
}
