package service

import (
	"context"
	"log"

	"github.com/chain-board/store"
)

// EventSync rebuilds the record mapping from the contract's event history. It
// looks back SyncWindow blocks below the chain head; older records stay
// on-chain but out of view.
type EventSync struct {
	store *store.Store
	info  InfoFetcher
	dial  ChainDialer
	cfg   Config
}

func NewEventSync(st *store.Store, info InfoFetcher, dial ChainDialer, cfg Config) *EventSync {
	return &EventSync{store: st, info: info, dial: dial, cfg: cfg}
}

// Sync queries the history window and replaces the store's mapping with the
// result. On any error the mapping is left as it was; the loading flag clears
// either way.
func (s *EventSync) Sync(ctx context.Context) error {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	info, err := s.info.Fetch(ctx)
	if err != nil {
		log.Printf("event sync: %v", err)
		return err
	}
	c, err := s.dial(ctx, info)
	if err != nil {
		log.Printf("event sync: %v", err)
		return err
	}
	defer c.Close()

	head, err := c.HeadBlock(ctx)
	if err != nil {
		log.Printf("event sync: head block: %v", err)
		return err
	}
	var from uint64
	if head > s.cfg.SyncWindow {
		from = head - s.cfg.SyncWindow
	}

	past, err := c.PastMessages(ctx, from)
	if err != nil {
		log.Printf("event sync: past messages: %v", err)
		return err
	}

	s.store.ApplySync(past)
	return nil
}
