// Package display builds the read-only projection consumed by the public
// queue board. It never mutates anything; it is recomputed from the store on
// every poll tick.
package display

import (
	"context"
	"sort"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

// How many upcoming ticket numbers each counter shows.
const DefaultNextDepth = 4

type CounterView struct {
	CounterID     string   `json:"counter_id"`
	Name          string   `json:"name"`
	Priority      bool     `json:"priority"`
	CurrentTicket string   `json:"current_ticket,omitempty"`
	NextTickets   []string `json:"next_tickets"`
}

type OfficeView struct {
	OfficeID string        `json:"office_id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Counters []CounterView `json:"counters"`
}

type Snapshot struct {
	Offices []OfficeView `json:"offices"`
	// OfficeNotFound is set when a requested filter office does not exist
	// or is inactive, so the board can say so instead of showing nothing.
	OfficeNotFound bool `json:"office_not_found,omitempty"`
}

type Aggregator struct {
	store     *store.Store
	nextDepth int
}

func NewAggregator(s *store.Store, nextDepth int) *Aggregator {
	if nextDepth <= 0 {
		nextDepth = DefaultNextDepth
	}
	return &Aggregator{store: s, nextDepth: nextDepth}
}

// Build assembles the per-office, per-counter view. filterOfficeID narrows
// the board to one office; offices without open counters are dropped unless
// they were explicitly requested.
func (a *Aggregator) Build(ctx context.Context, filterOfficeID string) (Snapshot, error) {
	offices, err := a.store.ListOffices(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	counters, err := a.store.ListCounters(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tickets, err := a.store.ListQueue(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Timestamp < tickets[j].Timestamp
	})

	snapshot := Snapshot{Offices: []OfficeView{}}
	matched := false
	for _, office := range offices {
		if office.Status != models.OfficeActive {
			continue
		}
		if filterOfficeID != "" && office.OfficeID != filterOfficeID {
			continue
		}
		matched = true

		view := OfficeView{
			OfficeID: office.OfficeID,
			Name:     office.Name,
			Address:  office.Address,
			Counters: []CounterView{},
		}
		for _, counter := range counters {
			if counter.OfficeID != office.OfficeID || counter.Status != models.CounterOpen {
				continue
			}
			view.Counters = append(view.Counters, a.counterView(ctx, office, counter, tickets))
		}
		if len(view.Counters) == 0 && filterOfficeID == "" {
			continue
		}
		snapshot.Offices = append(snapshot.Offices, view)
	}
	if filterOfficeID != "" && !matched {
		snapshot.OfficeNotFound = true
	}
	return snapshot, nil
}

func (a *Aggregator) counterView(ctx context.Context, office models.Office, counter models.Counter, tickets []models.Ticket) CounterView {
	view := CounterView{
		CounterID:   counter.CounterID,
		Name:        counter.Name,
		Priority:    counter.Priority,
		NextTickets: []string{},
	}

	// GetSlot discards mismatched slots itself; a read error degrades to an
	// empty "now serving" rather than failing the whole board.
	serving, ok, err := a.store.GetSlot(ctx, office.OfficeID, counter.CounterID)
	currentID := ""
	if err == nil && ok {
		view.CurrentTicket = serving.Number
		currentID = serving.TicketID
	}

	for _, ticket := range tickets {
		if ticket.OfficeID != office.OfficeID {
			continue
		}
		if ticket.TicketID == currentID {
			continue
		}
		view.NextTickets = append(view.NextTickets, ticket.Number)
		if len(view.NextTickets) == a.nextDepth {
			break
		}
	}
	return view
}
