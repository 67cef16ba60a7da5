package models

type Office struct {
	OfficeID     string `json:"office_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Status       string `json:"status"`
	CounterCount int    `json:"counter_count"`
}

const (
	OfficeActive   = "active"
	OfficeInactive = "inactive"
)

type Counter struct {
	CounterID string `json:"counter_id"`
	OfficeID  string `json:"office_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Priority  bool   `json:"priority"`
	Status    string `json:"status"`
}

const (
	CounterGeneral     = "general"
	CounterPriority    = "priority"
	CounterSpecialized = "specialized"

	CounterOpen   = "open"
	CounterClosed = "closed"
)

type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	OfficeID string `json:"office_id,omitempty"`
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Ticket is a queue entry. Immutable after issuance except for removal;
// Timestamp is Unix milliseconds and is only used for FIFO ordering.
type Ticket struct {
	TicketID  string `json:"ticket_id"`
	Number    string `json:"number"`
	Service   string `json:"service"`
	OfficeID  string `json:"office_id"`
	Priority  bool   `json:"priority"`
	Timestamp int64  `json:"timestamp"`
}

// ServingTicket is the value held by a per-counter serving slot. OfficeID
// and CounterID must match the slot key; mismatches are discarded on read.
type ServingTicket struct {
	TicketID  string `json:"ticket_id"`
	Number    string `json:"number"`
	Service   string `json:"service"`
	OfficeID  string `json:"office_id"`
	CounterID string `json:"counter_id"`
	ClaimedAt int64  `json:"claimed_at"`
}

const (
	NotifyVoice = "voice"
	NotifySound = "sound"
)

// Session is the resolved dashboard context: who is operating, which office
// they are bound to, and how they want to be notified. It is derived once at
// login and passed into every core component.
type Session struct {
	Role                   string `json:"role"`
	UserID                 string `json:"user_id"`
	OfficeID               string `json:"office_id,omitempty"`
	OfficeName             string `json:"office_name,omitempty"`
	CounterID              string `json:"counter_id,omitempty"`
	NotificationPreference string `json:"notification_preference"`
}
