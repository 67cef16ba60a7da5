package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

// Issuer creates queued tickets for the kiosk.
type Issuer struct {
	store *store.Store
	now   func() time.Time
}

func NewIssuer(s *store.Store) *Issuer {
	return &Issuer{store: s, now: time.Now}
}

// IssueTicket creates a ticket for an active office. The display number is
// the uppercased first letter of the office name plus a global sequence
// shared by every office; the sequence is persisted before the ticket is
// appended so it survives reloads.
func (i *Issuer) IssueTicket(ctx context.Context, officeID string) (models.Ticket, error) {
	office, ok, err := i.store.GetOffice(ctx, officeID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok || office.Status != models.OfficeActive {
		return models.Ticket{}, ErrOfficeNotFound
	}

	sequence, err := i.store.NextTicketNumber(ctx)
	if err != nil {
		return models.Ticket{}, err
	}

	prefix := "Q"
	if trimmed := []rune(strings.TrimSpace(office.Name)); len(trimmed) > 0 {
		prefix = strings.ToUpper(string(trimmed[0]))
	}

	ticket := models.Ticket{
		TicketID:  uuid.NewString(),
		Number:    fmt.Sprintf("%s-%d", prefix, sequence),
		Service:   office.Name,
		OfficeID:  office.OfficeID,
		Priority:  false,
		Timestamp: i.now().UnixMilli(),
	}

	tickets, err := i.store.ListQueue(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	tickets = append(tickets, ticket)
	if err := i.store.SaveQueue(ctx, tickets); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}
