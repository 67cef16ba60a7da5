package queue

import (
	"testing"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
)

func ticket(id, officeID string, timestamp int64) models.Ticket {
	return models.Ticket{TicketID: id, Number: id, OfficeID: officeID, Timestamp: timestamp}
}

func TestVisibleQueue(t *testing.T) {
	tickets := []models.Ticket{
		ticket("t1", "off1", 30),
		ticket("t2", "off2", 10),
		ticket("t3", "off1", 20),
		ticket("t4", "", 40),
	}

	cases := []struct {
		name    string
		session models.Session
		want    []string
	}{
		{
			name:    "admin sees everything ordered by arrival",
			session: models.Session{Role: models.RoleAdmin},
			want:    []string{"t2", "t3", "t1", "t4"},
		},
		{
			name:    "staff sees only their office",
			session: models.Session{Role: models.RoleStaff, OfficeID: "off1"},
			want:    []string{"t3", "t1"},
		},
		{
			name:    "unassigned staff sees the general pool only",
			session: models.Session{Role: models.RoleStaff},
			want:    []string{"t4"},
		},
		{
			name:    "staff for an office with no tickets sees nothing",
			session: models.Session{Role: models.RoleStaff, OfficeID: "off9"},
			want:    []string{},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleQueue(tt.session, tickets)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tickets, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].TicketID != id {
					t.Fatalf("position %d = %s, want %s", i, got[i].TicketID, id)
				}
			}
		})
	}
}

func TestVisibleQueueStableOnEqualTimestamps(t *testing.T) {
	tickets := []models.Ticket{
		ticket("first", "off1", 100),
		ticket("second", "off1", 100),
		ticket("third", "off1", 100),
	}
	session := models.Session{Role: models.RoleStaff, OfficeID: "off1"}

	got := VisibleQueue(session, tickets)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if got[i].TicketID != id {
			t.Fatalf("position %d = %s, want %s (insertion order must break ties)", i, got[i].TicketID, id)
		}
	}
}

func TestVisibleQueueNeverLeaksOtherOffices(t *testing.T) {
	tickets := []models.Ticket{
		ticket("t1", "off1", 1),
		ticket("t2", "off2", 2),
		ticket("t3", "", 3),
	}
	got := VisibleQueue(models.Session{Role: models.RoleStaff, OfficeID: "off2"}, tickets)
	for _, tk := range got {
		if tk.OfficeID != "off2" {
			t.Fatalf("ticket %s with office %q leaked into off2 view", tk.TicketID, tk.OfficeID)
		}
	}
}
