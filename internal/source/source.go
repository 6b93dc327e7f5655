// Package source adapts external order feeds to the display.
//
// Every source decodes its feed into domain.Order values and hands them to a
// Sink. Sources validate their input; the engine accepts whatever it is given.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/scvi-aria/deko/internal/domain"
)

// Sink receives decoded orders. display.Driver is the production sink.
type Sink interface {
	RunOrder(domain.Order)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(domain.Order)

func (f SinkFunc) RunOrder(o domain.Order) { f(o) }

// Source feeds a Sink until ctx is done.
type Source interface {
	Name() string
	Run(ctx context.Context, sink Sink) error
}

// ErrMissingOrderNumber is returned for payloads without an order_number.
var ErrMissingOrderNumber = errors.New("order_number is required")

// Payload is the JSON shape shared by every feed. It matches an order_log
// row, so the same decoder serves HTTP bodies, queue messages and database
// notifications.
type Payload struct {
	OrderNumber json.RawMessage `json:"order_number"`
	Items       json.RawMessage `json:"items"`
}

// Decode parses a JSON order payload.
//
// order_number may be a string or a number. items may be an array of strings,
// or of objects carrying a name (or description); other entries are skipped
// and a missing or non-array items field yields no items.
func Decode(data []byte) (domain.Order, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}
	number, err := orderNumber(p.OrderNumber)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{Number: number, Items: coerceItems(p.Items)}, nil
}

func orderNumber(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", ErrMissingOrderNumber
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			return "", ErrMissingOrderNumber
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("order_number: unsupported value %s", raw)
}

func coerceItems(raw json.RawMessage) []string {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{}
	}
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		if string(e) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			items = append(items, s)
			continue
		}
		var obj struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := json.Unmarshal(e, &obj); err != nil {
			continue
		}
		switch {
		case obj.Name != nil:
			items = append(items, *obj.Name)
		case obj.Description != nil:
			items = append(items, *obj.Description)
		}
	}
	return items
}
