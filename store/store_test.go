package store

import (
	"strconv"
	"sync"
	"testing"

	"github.com/chain-board/model"
	"gotest.tools/assert"
)

func TestApplySubmittedInsertsPendingRecord(t *testing.T) {
	st := New()
	st.ApplySubmitted("0xabc", "hello")

	rec, err := st.Get("0xabc")
	assert.NilError(t, err)
	assert.Equal(t, rec.Text, "hello")
	assert.Equal(t, rec.Status, model.StatusPending)
}

func TestConfirmAndFailTransitions(t *testing.T) {
	st := New()
	st.ApplySubmitted("0xabc", "hello")

	assert.NilError(t, st.ApplyConfirmed("0xabc"))
	rec, _ := st.Get("0xabc")
	assert.Equal(t, rec.Status, model.StatusConfirmed)

	st.ApplySubmitted("0xdef", "bye")
	assert.NilError(t, st.ApplyFailed("0xdef"))
	rec, _ = st.Get("0xdef")
	assert.Equal(t, rec.Status, model.StatusFailed)

	assert.Equal(t, st.ApplyConfirmed("0xmissing"), ErrNotFound)
}

func TestApplySyncReplacesMapping(t *testing.T) {
	st := New()
	st.ApplySubmitted("0xold", "stale")
	assert.NilError(t, st.ApplyConfirmed("0xold"))

	st.ApplySync([]model.PastMessage{{TxHash: "0x1", Text: "a"}})

	msgs := st.Messages()
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs["0x1"], model.MessageRecord{Text: "a", Status: model.StatusConfirmed})
}

func TestApplySyncKeepsPendingRecords(t *testing.T) {
	st := New()
	st.ApplySubmitted("0xpending", "in flight")

	st.ApplySync([]model.PastMessage{{TxHash: "0x1", Text: "a"}})

	msgs := st.Messages()
	assert.Equal(t, len(msgs), 2)
	assert.Equal(t, msgs["0xpending"].Status, model.StatusPending)
}

func TestApplySyncIsIdempotent(t *testing.T) {
	st := New()
	past := []model.PastMessage{
		{TxHash: "0x1", Text: "a"},
		{TxHash: "0x2", Text: "b"},
	}

	st.ApplySync(past)
	first := st.Messages()
	st.ApplySync(past)
	second := st.Messages()

	assert.DeepEqual(t, first, second)
}

func TestUpdatesFeedCarriesChanges(t *testing.T) {
	st := New()
	st.ApplySubmitted("0xabc", "hello")
	st.ApplyConfirmed("0xabc")

	update := <-st.Updates()
	assert.Equal(t, update.Hash, "0xabc")
	assert.Equal(t, update.Record.Status, model.StatusPending)

	update = <-st.Updates()
	assert.Equal(t, update.Record.Status, model.StatusConfirmed)
}

func TestConcurrentSyncAndTransitions(t *testing.T) {
	st := New()
	past := []model.PastMessage{
		{TxHash: "0x1", Text: "a"},
		{TxHash: "0x2", Text: "b"},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			st.ApplySync(past)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hash := "0xp" + strconv.Itoa(i)
			st.ApplySubmitted(hash, "in flight")
			st.ApplyConfirmed(hash)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			st.Messages()
			st.Get("0x1")
		}
	}()
	wg.Wait()

	msgs := st.Messages()
	assert.Equal(t, msgs["0x1"], model.MessageRecord{Text: "a", Status: model.StatusConfirmed})
	assert.Equal(t, msgs["0x2"], model.MessageRecord{Text: "b", Status: model.StatusConfirmed})
}

func TestFlags(t *testing.T) {
	st := New()
	assert.Equal(t, st.Loading(), false)
	st.SetLoading(true)
	assert.Equal(t, st.Loading(), true)

	assert.Equal(t, st.Submitting(), false)
	st.SetSubmitting(true)
	assert.Equal(t, st.Submitting(), true)
}
