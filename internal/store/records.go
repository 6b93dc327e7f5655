package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scvi-aria/deko/internal/domain"
)

// Outcome is what the queue did with an arriving order.
type Outcome string

const (
	OutcomeAdmitted Outcome = "admitted"
	OutcomeDropped  Outcome = "dropped"
)

// Run is one engine lifetime.
type Run struct {
	ID        string     `json:"id"`
	Vendor    string     `json:"vendor"`
	Template  string     `json:"template"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// OrderRecord is one order arrival.
type OrderRecord struct {
	RunID   string        `json:"run_id"`
	Seq     int64         `json:"seq"`
	Offset  time.Duration `json:"offset_ms"`
	Order   domain.Order  `json:"order"`
	Outcome Outcome       `json:"outcome"`
	Pending int           `json:"pending"`
}

// TransitionRecord is one stage change.
type TransitionRecord struct {
	RunID       string        `json:"run_id"`
	Seq         int64         `json:"seq"`
	Offset      time.Duration `json:"offset_ms"`
	From        domain.Stage  `json:"from"`
	To          domain.Stage  `json:"to"`
	OrderNumber string        `json:"order_number,omitempty"`
	Pending     int           `json:"pending"`
}

func (r TransitionRecord) String() string {
	return fmt.Sprintf("seq=%d +%dms %s->%s #%s", r.Seq, r.Offset.Milliseconds(), r.From, r.To, r.OrderNumber)
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func marshalItems(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(b), nil
}

func unmarshalItems(s string) ([]string, error) {
	items := []string{}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}
