package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/chain-board/model"
	"github.com/chain-board/store"
)

// MessageSubmitter posts a record to the backend for on-chain submission and
// hands the returned transaction hash to the receipt watcher.
type MessageSubmitter struct {
	BaseURL string
	Client  *http.Client

	store   *store.Store
	watcher TxWatcher
}

func NewMessageSubmitter(baseURL string, st *store.Store, watcher TxWatcher) *MessageSubmitter {
	return &MessageSubmitter{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		store:   st,
		watcher: watcher,
	}
}

// Submit sends text to the backend. On acceptance the record enters the store
// as pending and its hash is watched until confirmed. The submitting flag is
// reset whichever way the call ends.
func (s *MessageSubmitter) Submit(ctx context.Context, text string) error {
	s.store.SetSubmitting(true)
	defer s.store.SetSubmitting(false)

	body, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/submitRecord", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		log.Printf("submit record: %v", err)
		return fmt.Errorf("submit record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("submit record: backend returned %s", resp.Status)
		return fmt.Errorf("submit record: backend returned %s", resp.Status)
	}

	var sr model.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		log.Printf("submit record: decode response: %v", err)
		return fmt.Errorf("submit record: decode response: %w", err)
	}
	if sr.Status != "success" {
		log.Printf("submit record: backend status %q", sr.Status)
		return fmt.Errorf("submit record: backend status %q", sr.Status)
	}
	if sr.Hash == "" {
		log.Printf("submit record: backend accepted without a transaction hash")
		return fmt.Errorf("submit record: backend accepted without a transaction hash")
	}

	s.store.ApplySubmitted(sr.Hash, text)
	s.watcher.Watch(sr.Hash)
	return nil
}
