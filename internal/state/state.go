package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rook-computer/crhashtag/internal/card"
)

// ErrNoCard is returned for an index outside the card list.
var ErrNoCard = errors.New("no such card")

// State is a point-in-time copy of the editing session.
type State struct {
	Cards    []card.Composition
	Selected int // -1 when there are no cards
	Version  uint64
}

// Current returns the selected card of the snapshot.
func (s State) Current() (card.Composition, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Cards) {
		return card.Composition{}, false
	}
	return s.Cards[s.Selected], true
}

// Store guards the card list. Every mutation bumps the version so that
// preview loops can tell when to redraw.
type Store struct {
	mu       sync.RWMutex
	cards    []card.Composition
	selected int
	version  uint64
}

func NewStore() *Store {
	return &Store{selected: -1}
}

// Snapshot deep-copies the session so callers can render without the lock.
func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	cards := make([]card.Composition, len(store.cards))
	for i, c := range store.cards {
		cards[i] = c.Clone()
	}
	return State{Cards: cards, Selected: store.selected, Version: store.version}
}

func (store *Store) Version() uint64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.version
}

func (store *Store) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.cards)
}

// Add appends a new default card, selects it and returns its index.
func (store *Store) Add() int {
	return store.Append(card.New())
}

// Append adds c at the end of the list and selects it.
func (store *Store) Append(c card.Composition) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cards = append(store.cards, c.Clone())
	store.selected = len(store.cards) - 1
	store.version++
	return store.selected
}

// Delete removes card i. The selection moves to the previous card, or to
// the first one when card 0 was removed.
func (store *Store) Delete(i int) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(i); err != nil {
		return err
	}
	store.cards = append(store.cards[:i], store.cards[i+1:]...)
	switch {
	case len(store.cards) == 0:
		store.selected = -1
	case store.selected >= i && store.selected > 0:
		store.selected--
	}
	store.version++
	return nil
}

// Replace discards all cards and installs cards, selecting the first.
func (store *Store) Replace(cards []card.Composition) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cards = make([]card.Composition, len(cards))
	for i, c := range cards {
		store.cards[i] = c.Clone()
	}
	store.selected = -1
	if len(store.cards) > 0 {
		store.selected = 0
	}
	store.version++
}

// Update applies fn to card i under the write lock.
func (store *Store) Update(i int, fn func(*card.Composition)) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(i); err != nil {
		return err
	}
	fn(&store.cards[i])
	store.version++
	return nil
}

func (store *Store) Select(i int) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(i); err != nil {
		return err
	}
	if store.selected != i {
		store.selected = i
		store.version++
	}
	return nil
}

// Get returns a copy of card i.
func (store *Store) Get(i int) (card.Composition, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if err := store.check(i); err != nil {
		return card.Composition{}, err
	}
	return store.cards[i].Clone(), nil
}

// Current returns the selected index and a copy of its card.
func (store *Store) Current() (int, card.Composition, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.selected < 0 {
		return -1, card.Composition{}, false
	}
	return store.selected, store.cards[store.selected].Clone(), true
}

func (store *Store) check(i int) error {
	if i < 0 || i >= len(store.cards) {
		return fmt.Errorf("card %d of %d: %w", i+1, len(store.cards), ErrNoCard)
	}
	return nil
}
