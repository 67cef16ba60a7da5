package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/jojosay/Local-Queue-Assistant/internal/kv"
	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s := store.New(kv.NewMemory())
	return New(s), s
}

func TestCreateOfficeDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	office, err := svc.CreateOffice(ctx, models.Office{Name: "Main City Branch", Address: "1 Plaza"})
	if err != nil {
		t.Fatalf("CreateOffice: %v", err)
	}
	if office.OfficeID == "" {
		t.Fatal("expected generated office id")
	}
	if office.Status != models.OfficeActive {
		t.Fatalf("status = %s, want active", office.Status)
	}

	if _, err := svc.CreateOffice(ctx, models.Office{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name err = %v, want ErrInvalidInput", err)
	}
}

func TestCounterCountRecomputed(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	office, err := svc.CreateOffice(ctx, models.Office{Name: "Main City Branch"})
	if err != nil {
		t.Fatalf("CreateOffice: %v", err)
	}

	c1, err := svc.CreateCounter(ctx, models.Counter{Name: "Counter 1", OfficeID: office.OfficeID})
	if err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}
	if _, err := svc.CreateCounter(ctx, models.Counter{Name: "Counter 2", OfficeID: office.OfficeID}); err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}

	got, _, err := s.GetOffice(ctx, office.OfficeID)
	if err != nil {
		t.Fatalf("GetOffice: %v", err)
	}
	if got.CounterCount != 2 {
		t.Fatalf("counter count = %d, want 2", got.CounterCount)
	}

	if err := svc.DeleteCounter(ctx, c1.CounterID); err != nil {
		t.Fatalf("DeleteCounter: %v", err)
	}
	got, _, _ = s.GetOffice(ctx, office.OfficeID)
	if got.CounterCount != 1 {
		t.Fatalf("counter count after delete = %d, want 1", got.CounterCount)
	}
}

func TestCreateCounterRequiresOffice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	if _, err := svc.CreateCounter(ctx, models.Counter{Name: "Counter 1", OfficeID: "missing"}); !errors.Is(err, ErrOfficeNotFound) {
		t.Fatalf("err = %v, want ErrOfficeNotFound", err)
	}
}

func TestDeleteOfficeCascadesCountersNotTickets(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	keep, err := svc.CreateOffice(ctx, models.Office{Name: "Keep Branch"})
	if err != nil {
		t.Fatalf("CreateOffice: %v", err)
	}
	doomed, err := svc.CreateOffice(ctx, models.Office{Name: "Doomed Branch"})
	if err != nil {
		t.Fatalf("CreateOffice: %v", err)
	}
	if _, err := svc.CreateCounter(ctx, models.Counter{Name: "Counter 1", OfficeID: keep.OfficeID}); err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}
	doomedCounter, err := svc.CreateCounter(ctx, models.Counter{Name: "Counter 2", OfficeID: doomed.OfficeID})
	if err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}
	if err := s.SetSlot(ctx, models.ServingTicket{
		TicketID: "tkt1", Number: "D-100",
		OfficeID: doomed.OfficeID, CounterID: doomedCounter.CounterID,
	}); err != nil {
		t.Fatalf("SetSlot: %v", err)
	}
	if err := s.SaveQueue(ctx, []models.Ticket{
		{TicketID: "tkt2", Number: "D-101", OfficeID: doomed.OfficeID, Timestamp: 1},
	}); err != nil {
		t.Fatalf("SaveQueue: %v", err)
	}

	if err := svc.DeleteOffice(ctx, doomed.OfficeID); err != nil {
		t.Fatalf("DeleteOffice: %v", err)
	}

	counters, _ := s.ListCounters(ctx)
	for _, counter := range counters {
		if counter.OfficeID == doomed.OfficeID {
			t.Fatalf("counter %s survived office deletion", counter.CounterID)
		}
	}
	if len(counters) != 1 {
		t.Fatalf("counters = %d, want 1 surviving", len(counters))
	}
	if _, ok, _ := s.GetSlot(ctx, doomed.OfficeID, doomedCounter.CounterID); ok {
		t.Fatal("serving slot survived office deletion")
	}

	// Queue tickets for the deleted office are intentionally left alone.
	tickets, _ := s.ListQueue(ctx)
	if len(tickets) != 1 || tickets[0].OfficeID != doomed.OfficeID {
		t.Fatalf("queue = %+v, want the orphaned ticket untouched", tickets)
	}
}

func TestCreateUserUniqueUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.CreateUser(ctx, models.User{Username: "maria", Password: "pw"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := svc.CreateUser(ctx, models.User{Username: "Maria", Password: "pw2"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestUpdateAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	user, err := svc.CreateUser(ctx, models.User{Username: "maria", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	updated, err := svc.UpdateUser(ctx, models.User{UserID: user.UserID, OfficeID: "off1"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.OfficeID != "off1" || updated.Username != "maria" {
		t.Fatalf("updated = %+v", updated)
	}
	if err := svc.DeleteUser(ctx, user.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, user.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second delete err = %v, want ErrUserNotFound", err)
	}
}
