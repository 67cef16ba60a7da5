// Package export serializes the whole persisted state to one JSON document
// and back. Import overwrites everything; Reset clears everything except
// users.
package export

import (
	"context"
	"encoding/json"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

// Document is the on-disk exchange format. Slots are keyed by their full
// store key so import can restore them verbatim.
type Document struct {
	Offices          []models.Office                 `json:"offices"`
	Counters         []models.Counter                `json:"counters"`
	Users            []models.User                   `json:"users"`
	Queue            []models.Ticket                 `json:"queue"`
	Slots            map[string]models.ServingTicket `json:"slots"`
	NextTicketNumber int                             `json:"next_ticket_number"`
}

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) Export(ctx context.Context) (Document, error) {
	doc := Document{Slots: map[string]models.ServingTicket{}}
	var err error
	if doc.Offices, err = s.store.ListOffices(ctx); err != nil {
		return Document{}, err
	}
	if doc.Counters, err = s.store.ListCounters(ctx); err != nil {
		return Document{}, err
	}
	if doc.Users, err = s.store.ListUsers(ctx); err != nil {
		return Document{}, err
	}
	if doc.Queue, err = s.store.ListQueue(ctx); err != nil {
		return Document{}, err
	}
	if doc.NextTicketNumber, err = s.store.GetNextTicketNumberValue(ctx); err != nil {
		return Document{}, err
	}

	keys, err := s.store.KV().Keys(ctx, store.SlotKeyPrefix)
	if err != nil {
		return Document{}, err
	}
	for _, key := range keys {
		raw, ok, err := s.store.KV().Get(ctx, key)
		if err != nil {
			return Document{}, err
		}
		if !ok {
			continue
		}
		var serving models.ServingTicket
		if err := json.Unmarshal(raw, &serving); err != nil {
			// Corrupt slots are dropped from the export rather than
			// poisoning the document.
			continue
		}
		doc.Slots[key] = serving
	}
	return doc, nil
}

// Import replaces all persisted state with the document's contents.
func (s *Service) Import(ctx context.Context, doc Document) error {
	if err := s.clearSlots(ctx); err != nil {
		return err
	}
	if err := s.store.SaveOffices(ctx, doc.Offices); err != nil {
		return err
	}
	if err := s.store.SaveCounters(ctx, doc.Counters); err != nil {
		return err
	}
	if err := s.store.SaveUsers(ctx, doc.Users); err != nil {
		return err
	}
	if err := s.store.SaveQueue(ctx, doc.Queue); err != nil {
		return err
	}
	if err := s.store.SetNextTicketNumber(ctx, doc.NextTicketNumber); err != nil {
		return err
	}
	for _, serving := range doc.Slots {
		if err := s.store.SetSlot(ctx, serving); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears every key except users.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.clearSlots(ctx); err != nil {
		return err
	}
	for _, key := range []string{store.KeyOffices, store.KeyCounters, store.KeyQueue, store.KeyNextNumber} {
		if err := s.store.KV().Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) clearSlots(ctx context.Context) error {
	keys, err := s.store.KV().Keys(ctx, store.SlotKeyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.store.KV().Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
