package queue

import (
	"sort"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
)

// VisibleQueue derives the queue subset a session may see, ordered by
// arrival. Admins see everything; staff bound to an office see that office's
// tickets; unbound staff see only tickets that carry no office (the general
// pool, normally empty since issuance always sets one). The sort is stable
// so equal timestamps keep insertion order.
func VisibleQueue(session models.Session, tickets []models.Ticket) []models.Ticket {
	visible := make([]models.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		switch {
		case session.Role == models.RoleAdmin:
			visible = append(visible, ticket)
		case session.OfficeID != "":
			if ticket.OfficeID == session.OfficeID {
				visible = append(visible, ticket)
			}
		default:
			if ticket.OfficeID == "" {
				visible = append(visible, ticket)
			}
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Timestamp < visible[j].Timestamp
	})
	return visible
}
