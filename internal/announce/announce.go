// Package announce is the boundary to the external voice announcement
// service. It turns a ticket number and counter label into spoken text; a
// failure here never touches queue state.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type Announcer interface {
	// Announce returns the text that was (or would be) spoken.
	Announce(ctx context.Context, ticketNumber, counterLabel string) (string, error)
}

// Text renders the announcement phrase used by every provider.
func Text(ticketNumber, counterLabel string) string {
	return fmt.Sprintf("Ticket number %s, please proceed to %s.", ticketNumber, counterLabel)
}

// NewAnnouncer selects a provider by kind. Unknown kinds fall back to the
// log provider; an http(s) URL is treated as a webhook endpoint.
func NewAnnouncer(kind, webhookURL string) Announcer {
	switch kind {
	case "", "stub", "log":
		return logAnnouncer{}
	case "noop":
		return noopAnnouncer{}
	case "fail":
		return failAnnouncer{}
	case "webhook":
		if webhookURL == "" {
			return logAnnouncer{}
		}
		return webhookAnnouncer{url: webhookURL}
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return webhookAnnouncer{url: kind}
		}
		return logAnnouncer{}
	}
}

type logAnnouncer struct{}

func (logAnnouncer) Announce(ctx context.Context, ticketNumber, counterLabel string) (string, error) {
	text := Text(ticketNumber, counterLabel)
	log.Printf("announce: %s", text)
	return text, nil
}

type noopAnnouncer struct{}

func (noopAnnouncer) Announce(ctx context.Context, ticketNumber, counterLabel string) (string, error) {
	return Text(ticketNumber, counterLabel), nil
}

type failAnnouncer struct{}

func (failAnnouncer) Announce(ctx context.Context, ticketNumber, counterLabel string) (string, error) {
	return "", errors.New("announcer failure")
}

type webhookAnnouncer struct {
	url string
}

func (a webhookAnnouncer) Announce(ctx context.Context, ticketNumber, counterLabel string) (string, error) {
	text := Text(ticketNumber, counterLabel)
	payload := map[string]string{
		"ticket_number": ticketNumber,
		"counter":       counterLabel,
		"text":          text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", errors.New("announcer rejected request")
	}
	return text, nil
}
