package display

import (
	"context"
	"testing"
	"time"
)

func TestPollerCachesAndStops(t *testing.T) {
	s := seedStore(t)
	seedTickets(t, s, "off1", 2)

	poller := NewPoller(NewAggregator(s, 4), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		snapshot := poller.Latest()
		if len(snapshot.Offices) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller never produced a snapshot")
		case <-time.After(5 * time.Millisecond):
		}
	}

	poller.Close()

	// After Close the cached snapshot stays readable but no longer updates.
	before := poller.Latest()
	seedTickets(t, s, "off1", 5)
	time.Sleep(50 * time.Millisecond)
	after := poller.Latest()
	if len(before.Offices) != len(after.Offices) {
		t.Fatal("poller kept refreshing after Close")
	}
	if len(after.Offices[0].Counters[0].NextTickets) != len(before.Offices[0].Counters[0].NextTickets) {
		t.Fatal("poller kept refreshing after Close")
	}
}
