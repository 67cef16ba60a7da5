package export

import (
	"context"
	"reflect"
	"testing"

	"github.com/jojosay/Local-Queue-Assistant/internal/kv"
	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.New(kv.NewMemory())
	if err := s.SaveOffices(ctx, []models.Office{
		{OfficeID: "off1", Name: "Main City Branch", Status: models.OfficeActive, CounterCount: 1},
	}); err != nil {
		t.Fatalf("seed offices: %v", err)
	}
	if err := s.SaveCounters(ctx, []models.Counter{
		{CounterID: "c1", OfficeID: "off1", Name: "Counter 1", Status: models.CounterOpen},
	}); err != nil {
		t.Fatalf("seed counters: %v", err)
	}
	if err := s.SaveUsers(ctx, []models.User{
		{UserID: "u1", Username: "maria", Password: "pw", Role: models.RoleStaff, OfficeID: "off1"},
	}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if err := s.SaveQueue(ctx, []models.Ticket{
		{TicketID: "t1", Number: "M-100", Service: "Main City Branch", OfficeID: "off1", Timestamp: 1},
		{TicketID: "t2", Number: "M-101", Service: "Main City Branch", OfficeID: "off1", Timestamp: 2},
	}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	if err := s.SetSlot(ctx, models.ServingTicket{
		TicketID: "t0", Number: "M-099", OfficeID: "off1", CounterID: "c1", ClaimedAt: 5,
	}); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	if err := s.SetNextTicketNumber(ctx, 102); err != nil {
		t.Fatalf("seed sequence: %v", err)
	}
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := seededStore(t)

	doc, err := New(source).Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	target := store.New(kv.NewMemory())
	if err := New(target).Import(ctx, doc); err != nil {
		t.Fatalf("Import: %v", err)
	}

	doc2, err := New(target).Export(ctx)
	if err != nil {
		t.Fatalf("re-Export: %v", err)
	}
	if !reflect.DeepEqual(doc, doc2) {
		t.Fatalf("round trip mismatch:\nexported %+v\nimported %+v", doc, doc2)
	}

	number, err := target.GetNextTicketNumberValue(ctx)
	if err != nil {
		t.Fatalf("GetNextTicketNumberValue: %v", err)
	}
	if number != 102 {
		t.Fatalf("sequence = %d, want 102", number)
	}
	serving, ok, err := target.GetSlot(ctx, "off1", "c1")
	if err != nil || !ok {
		t.Fatalf("slot missing after import: ok=%v err=%v", ok, err)
	}
	if serving.Number != "M-099" {
		t.Fatalf("slot = %s, want M-099", serving.Number)
	}
}

func TestImportOverwritesExistingState(t *testing.T) {
	ctx := context.Background()
	target := seededStore(t)

	// Import an almost-empty document over the seeded state.
	doc := Document{
		Offices:          []models.Office{},
		Counters:         []models.Counter{},
		Users:            []models.User{},
		Queue:            []models.Ticket{},
		Slots:            map[string]models.ServingTicket{},
		NextTicketNumber: 500,
	}
	if err := New(target).Import(ctx, doc); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if tickets, _ := target.ListQueue(ctx); len(tickets) != 0 {
		t.Fatalf("queue survived import: %+v", tickets)
	}
	if _, ok, _ := target.GetSlot(ctx, "off1", "c1"); ok {
		t.Fatal("slot survived import")
	}
	if number, _ := target.GetNextTicketNumberValue(ctx); number != 500 {
		t.Fatalf("sequence = %d, want 500", number)
	}
}

func TestResetKeepsUsers(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	if err := New(s).Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if offices, _ := s.ListOffices(ctx); len(offices) != 0 {
		t.Fatal("offices survived reset")
	}
	if counters, _ := s.ListCounters(ctx); len(counters) != 0 {
		t.Fatal("counters survived reset")
	}
	if tickets, _ := s.ListQueue(ctx); len(tickets) != 0 {
		t.Fatal("queue survived reset")
	}
	if _, ok, _ := s.GetSlot(ctx, "off1", "c1"); ok {
		t.Fatal("slot survived reset")
	}
	if number, _ := s.GetNextTicketNumberValue(ctx); number != store.FirstTicketNumber {
		t.Fatalf("sequence = %d, want reset to %d", number, store.FirstTicketNumber)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 || users[0].Username != "maria" {
		t.Fatalf("users = %+v, want preserved", users)
	}
}
