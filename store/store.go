package store

import (
	"errors"
	"sync"

	"github.com/chain-board/model"
)

var (
	// ErrNotFound is returned when no record exists for a transaction hash.
	ErrNotFound = errors.New("not found")
)

// Store holds the board state: the record mapping plus the loading and
// submitting flags. Every mutation goes through one of the update methods
// below, one per mutation site (submit, receipt, sync), and each change is
// pushed to the update feed for connected views.
type Store struct {
	mu         sync.RWMutex
	messages   map[string]model.MessageRecord
	loading    bool
	submitting bool

	updates chan model.RecordUpdate
}

func New() *Store {
	return &Store{
		messages: make(map[string]model.MessageRecord),
		updates:  make(chan model.RecordUpdate, 64),
	}
}

// Updates is the feed of record changes. A slow consumer drops updates
// rather than blocking a mutation.
func (s *Store) Updates() <-chan model.RecordUpdate {
	return s.updates
}

func (s *Store) notify(hash string, rec model.MessageRecord) {
	select {
	case s.updates <- model.RecordUpdate{Hash: hash, Record: rec}:
	default:
	}
}

// ApplySubmitted inserts a freshly submitted record in the pending state.
func (s *Store) ApplySubmitted(hash, text string) {
	s.mu.Lock()
	rec := model.MessageRecord{Text: text, Status: model.StatusPending}
	s.messages[hash] = rec
	s.mu.Unlock()
	s.notify(hash, rec)
}

// ApplyConfirmed marks the record for hash as confirmed on-chain.
func (s *Store) ApplyConfirmed(hash string) error {
	return s.transition(hash, model.StatusConfirmed)
}

// ApplyFailed marks the record for hash as failed or stuck.
func (s *Store) ApplyFailed(hash string) error {
	return s.transition(hash, model.StatusFailed)
}

func (s *Store) transition(hash, status string) error {
	s.mu.Lock()
	rec, ok := s.messages[hash]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	rec.Status = status
	s.messages[hash] = rec
	s.mu.Unlock()
	s.notify(hash, rec)
	return nil
}

// ApplySync replaces the mapping with the synced history. Records that are
// still pending locally survive the replace so an in-flight submission is not
// erased by a sync that resolved after it.
func (s *Store) ApplySync(past []model.PastMessage) {
	s.mu.Lock()
	next := make(map[string]model.MessageRecord, len(past))
	for _, p := range past {
		next[p.TxHash] = model.MessageRecord{Text: p.Text, Status: model.StatusConfirmed}
	}
	for hash, rec := range s.messages {
		if _, synced := next[hash]; !synced && rec.Pending() {
			next[hash] = rec
		}
	}
	s.messages = next
	changed := make([]model.RecordUpdate, 0, len(next))
	for hash, rec := range next {
		changed = append(changed, model.RecordUpdate{Hash: hash, Record: rec})
	}
	s.mu.Unlock()

	for _, u := range changed {
		s.notify(u.Hash, u.Record)
	}
}

// Get returns the record for hash.
func (s *Store) Get(hash string) (model.MessageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.messages[hash]
	if !ok {
		return model.MessageRecord{}, ErrNotFound
	}
	return rec, nil
}

// Messages returns a copy of the record mapping.
func (s *Store) Messages() map[string]model.MessageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.MessageRecord, len(s.messages))
	for hash, rec := range s.messages {
		out[hash] = rec
	}
	return out
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetSubmitting(v bool) {
	s.mu.Lock()
	s.submitting = v
	s.mu.Unlock()
}

func (s *Store) Submitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}
