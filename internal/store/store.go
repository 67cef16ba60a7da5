// Package store provides typed entity access over the key-value boundary.
// Saves are replace-all: callers read a collection, modify it in memory and
// write the whole thing back. A value that fails to parse is treated as
// empty and healed by writing the empty form back, so corruption never
// escapes this layer.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jojosay/Local-Queue-Assistant/internal/kv"
	"github.com/jojosay/Local-Queue-Assistant/internal/models"
)

const (
	KeyOffices    = "offices"
	KeyCounters   = "counters"
	KeyUsers      = "users"
	KeyQueue      = "queue"
	KeyNextNumber = "next-ticket-number"

	SlotKeyPrefix = "current-ticket:"

	// FirstTicketNumber seeds the global sequence on first issuance.
	FirstTicketNumber = 100
)

func SlotKey(officeID, counterID string) string {
	return fmt.Sprintf("%s%s:%s", SlotKeyPrefix, officeID, counterID)
}

type Store struct {
	kv kv.Store
}

func New(kv kv.Store) *Store {
	return &Store{kv: kv}
}

// KV exposes the underlying boundary for export/import tooling.
func (s *Store) KV() kv.Store {
	return s.kv
}

func (s *Store) ListOffices(ctx context.Context) ([]models.Office, error) {
	return loadList[models.Office](ctx, s, KeyOffices)
}

func (s *Store) SaveOffices(ctx context.Context, offices []models.Office) error {
	return saveList(ctx, s, KeyOffices, offices)
}

func (s *Store) ListCounters(ctx context.Context) ([]models.Counter, error) {
	return loadList[models.Counter](ctx, s, KeyCounters)
}

func (s *Store) SaveCounters(ctx context.Context, counters []models.Counter) error {
	return saveList(ctx, s, KeyCounters, counters)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return loadList[models.User](ctx, s, KeyUsers)
}

func (s *Store) SaveUsers(ctx context.Context, users []models.User) error {
	return saveList(ctx, s, KeyUsers, users)
}

func (s *Store) ListQueue(ctx context.Context) ([]models.Ticket, error) {
	return loadList[models.Ticket](ctx, s, KeyQueue)
}

func (s *Store) SaveQueue(ctx context.Context, queue []models.Ticket) error {
	return saveList(ctx, s, KeyQueue, queue)
}

// GetOffice resolves one office by ID.
func (s *Store) GetOffice(ctx context.Context, officeID string) (models.Office, bool, error) {
	offices, err := s.ListOffices(ctx)
	if err != nil {
		return models.Office{}, false, err
	}
	for _, office := range offices {
		if office.OfficeID == officeID {
			return office, true, nil
		}
	}
	return models.Office{}, false, nil
}

// GetSlot returns the serving ticket for a counter. A stored ticket whose
// office or counter does not match the slot key is stale: it is discarded,
// the slot cleared, and the read reports empty.
func (s *Store) GetSlot(ctx context.Context, officeID, counterID string) (models.ServingTicket, bool, error) {
	key := SlotKey(officeID, counterID)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return models.ServingTicket{}, false, err
	}
	if !ok {
		return models.ServingTicket{}, false, nil
	}
	var serving models.ServingTicket
	if err := json.Unmarshal(raw, &serving); err != nil {
		log.Printf("store: corrupt slot %s, clearing: %v", key, err)
		if err := s.kv.Remove(ctx, key); err != nil {
			return models.ServingTicket{}, false, err
		}
		return models.ServingTicket{}, false, nil
	}
	if serving.OfficeID != officeID || serving.CounterID != counterID {
		log.Printf("store: slot %s holds mismatched ticket %s, clearing", key, serving.Number)
		if err := s.kv.Remove(ctx, key); err != nil {
			return models.ServingTicket{}, false, err
		}
		return models.ServingTicket{}, false, nil
	}
	return serving, true, nil
}

func (s *Store) SetSlot(ctx context.Context, serving models.ServingTicket) error {
	raw, err := json.Marshal(serving)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SlotKey(serving.OfficeID, serving.CounterID), raw)
}

func (s *Store) ClearSlot(ctx context.Context, officeID, counterID string) error {
	return s.kv.Remove(ctx, SlotKey(officeID, counterID))
}

// NextTicketNumber returns the current sequence value and persists its
// successor, so the sequence survives restarts even if the caller crashes
// right after issuance.
func (s *Store) NextTicketNumber(ctx context.Context) (int, error) {
	number := FirstTicketNumber
	raw, ok, err := s.kv.Get(ctx, KeyNextNumber)
	if err != nil {
		return 0, err
	}
	if ok {
		if err := json.Unmarshal(raw, &number); err != nil {
			log.Printf("store: corrupt %s, resetting: %v", KeyNextNumber, err)
			number = FirstTicketNumber
		}
	}
	next, err := json.Marshal(number + 1)
	if err != nil {
		return 0, err
	}
	if err := s.kv.Set(ctx, KeyNextNumber, next); err != nil {
		return 0, err
	}
	return number, nil
}

func (s *Store) SetNextTicketNumber(ctx context.Context, number int) error {
	raw, err := json.Marshal(number)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyNextNumber, raw)
}

func (s *Store) GetNextTicketNumberValue(ctx context.Context) (int, error) {
	raw, ok, err := s.kv.Get(ctx, KeyNextNumber)
	if err != nil {
		return 0, err
	}
	if !ok {
		return FirstTicketNumber, nil
	}
	var number int
	if err := json.Unmarshal(raw, &number); err != nil {
		return FirstTicketNumber, nil
	}
	return number, nil
}

func loadList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Printf("store: corrupt %s, resetting to empty: %v", key, err)
		if err := saveList(ctx, s, key, []T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func saveList[T any](ctx context.Context, s *Store, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw)
}
