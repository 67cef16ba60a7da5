package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jojosay/Local-Queue-Assistant/internal/announce"
	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

// Desk is the call/serve state machine for one (office, counter) pair. The
// serving slot in the store is the authoritative state: the desk is Serving
// iff its slot holds a ticket. Exactly one desk operates a given counter.
type Desk struct {
	store     *store.Store
	announcer announce.Announcer
	session   models.Session
	requeue   bool
	now       func() time.Time

	mu         sync.Mutex
	announcing bool
}

type Options struct {
	// SkipReturnToQueue puts skipped tickets back into the queue instead of
	// dropping them. The requeued ticket keeps its claim time as timestamp,
	// so it lands ahead of anything issued after it was called.
	SkipReturnToQueue bool
}

// CalledTicket is the result of a successful CallNext.
type CalledTicket struct {
	Serving models.ServingTicket `json:"serving"`
	Waiting time.Duration        `json:"waiting"`
}

func NewDesk(s *store.Store, announcer announce.Announcer, session models.Session, options Options) *Desk {
	return &Desk{
		store:     s,
		announcer: announcer,
		session:   session,
		requeue:   options.SkipReturnToQueue,
		now:       time.Now,
	}
}

// State reports idle or serving from the slot.
func (d *Desk) State(ctx context.Context) (string, error) {
	if err := d.operable(ctx); err != nil {
		return "", err
	}
	state, _, err := d.currentState(ctx)
	return state, err
}

// currentState derives the desk state from the serving slot.
func (d *Desk) currentState(ctx context.Context) (string, models.ServingTicket, error) {
	serving, ok, err := d.store.GetSlot(ctx, d.session.OfficeID, d.session.CounterID)
	if err != nil {
		return "", models.ServingTicket{}, err
	}
	if ok {
		return StateServing, serving, nil
	}
	return StateIdle, models.ServingTicket{}, nil
}

// Current returns the ticket being served, if any.
func (d *Desk) Current(ctx context.Context) (models.ServingTicket, bool, error) {
	if err := d.operable(ctx); err != nil {
		return models.ServingTicket{}, false, err
	}
	return d.store.GetSlot(ctx, d.session.OfficeID, d.session.CounterID)
}

// CallNext claims the head of the visible queue for this counter. It is the
// single dequeue point: the claimed ticket is removed from the shared queue
// and written into the serving slot in the same pass. An empty queue clears
// any stale slot as a repair and reports ErrQueueEmpty.
func (d *Desk) CallNext(ctx context.Context) (CalledTicket, error) {
	if err := d.operable(ctx); err != nil {
		return CalledTicket{}, err
	}
	if d.isAnnouncing() {
		return CalledTicket{}, ErrAnnouncing
	}
	state, _, err := d.currentState(ctx)
	if err != nil {
		return CalledTicket{}, err
	}
	if !ValidTransition("call_next", state) {
		return CalledTicket{}, ErrCounterNotReady
	}

	tickets, err := d.store.ListQueue(ctx)
	if err != nil {
		return CalledTicket{}, err
	}
	visible := VisibleQueue(d.session, tickets)
	if len(visible) == 0 {
		if err := d.store.ClearSlot(ctx, d.session.OfficeID, d.session.CounterID); err != nil {
			return CalledTicket{}, err
		}
		return CalledTicket{}, ErrQueueEmpty
	}

	head := visible[0]
	remaining := make([]models.Ticket, 0, len(tickets)-1)
	for _, ticket := range tickets {
		if ticket.TicketID != head.TicketID {
			remaining = append(remaining, ticket)
		}
	}
	if err := d.store.SaveQueue(ctx, remaining); err != nil {
		return CalledTicket{}, err
	}

	now := d.now()
	serving := models.ServingTicket{
		TicketID:  head.TicketID,
		Number:    head.Number,
		Service:   head.Service,
		OfficeID:  d.session.OfficeID,
		CounterID: d.session.CounterID,
		ClaimedAt: now.UnixMilli(),
	}
	if err := d.store.SetSlot(ctx, serving); err != nil {
		return CalledTicket{}, err
	}
	return CalledTicket{
		Serving: serving,
		Waiting: now.Sub(time.UnixMilli(head.Timestamp)),
	}, nil
}

// Complete retires the current ticket and returns the desk to idle.
func (d *Desk) Complete(ctx context.Context) (models.ServingTicket, error) {
	return d.finish(ctx, "complete", false)
}

// Skip clears the current ticket. By default the ticket is dropped; with
// SkipReturnToQueue it re-enters the queue instead.
func (d *Desk) Skip(ctx context.Context) (models.ServingTicket, error) {
	return d.finish(ctx, "skip", d.requeue)
}

func (d *Desk) finish(ctx context.Context, action string, requeue bool) (models.ServingTicket, error) {
	if err := d.operable(ctx); err != nil {
		return models.ServingTicket{}, err
	}
	state, serving, err := d.currentState(ctx)
	if err != nil {
		return models.ServingTicket{}, err
	}
	if !ValidTransition(action, state) {
		return models.ServingTicket{}, ErrNoActiveTicket
	}
	if err := d.store.ClearSlot(ctx, d.session.OfficeID, d.session.CounterID); err != nil {
		return models.ServingTicket{}, err
	}
	if requeue {
		tickets, err := d.store.ListQueue(ctx)
		if err != nil {
			return models.ServingTicket{}, err
		}
		tickets = append(tickets, models.Ticket{
			TicketID:  serving.TicketID,
			Number:    serving.Number,
			Service:   serving.Service,
			OfficeID:  serving.OfficeID,
			Timestamp: serving.ClaimedAt,
		})
		if err := d.store.SaveQueue(ctx, tickets); err != nil {
			return models.ServingTicket{}, err
		}
	}
	return serving, nil
}

// Recall re-announces the current ticket. Queue and slot state never change;
// a failed announcement leaves the desk serving so the action can be retried.
func (d *Desk) Recall(ctx context.Context) (string, error) {
	return d.announceCurrent(ctx, "recall")
}

// Announce voices the current ticket on demand.
func (d *Desk) Announce(ctx context.Context) (string, error) {
	return d.announceCurrent(ctx, "announce")
}

func (d *Desk) announceCurrent(ctx context.Context, action string) (string, error) {
	if err := d.operable(ctx); err != nil {
		return "", err
	}
	state, serving, err := d.currentState(ctx)
	if err != nil {
		return "", err
	}
	if !ValidTransition(action, state) {
		return "", ErrNoActiveTicket
	}
	if !d.beginAnnouncing() {
		return "", ErrAnnouncing
	}
	defer d.endAnnouncing()

	label, err := d.counterLabel(ctx)
	if err != nil {
		return "", err
	}
	text, err := d.announcer.Announce(ctx, serving.Number, label)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnnounceFailed, err)
	}
	return text, nil
}

// operable verifies this desk can act: a staff session bound to an existing,
// open counter in its own office. Admins observe only.
func (d *Desk) operable(ctx context.Context) error {
	if d.session.Role != models.RoleStaff || d.session.OfficeID == "" || d.session.CounterID == "" {
		return ErrCounterNotReady
	}
	counters, err := d.store.ListCounters(ctx)
	if err != nil {
		return err
	}
	for _, counter := range counters {
		if counter.CounterID != d.session.CounterID {
			continue
		}
		if counter.OfficeID != d.session.OfficeID || counter.Status != models.CounterOpen {
			return ErrCounterNotReady
		}
		return nil
	}
	return ErrCounterNotReady
}

func (d *Desk) counterLabel(ctx context.Context) (string, error) {
	counters, err := d.store.ListCounters(ctx)
	if err != nil {
		return "", err
	}
	for _, counter := range counters {
		if counter.CounterID == d.session.CounterID {
			return counter.Name, nil
		}
	}
	return d.session.CounterID, nil
}

func (d *Desk) isAnnouncing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.announcing
}

func (d *Desk) beginAnnouncing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.announcing {
		return false
	}
	d.announcing = true
	return true
}

func (d *Desk) endAnnouncing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.announcing = false
}
