package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// wireTransaction accepts every field spelling seen on the wire. It is
// normalized into core.Transaction once, right after decoding.
type wireTransaction struct {
	ID            *int64          `json:"id"`
	TransactionID *int64          `json:"transactionId"`
	Amount        json.RawMessage `json:"amount"`
	Category      *string         `json:"category"`
	CreatedAt     string          `json:"createdAt"`
	CreatedAtAlt  string          `json:"created_at"`
	DateTime      string          `json:"dateTime"`
}

// Transaction is the canonical JSON shape emitted by the server.
type Transaction struct {
	ID        int64        `json:"id"`
	Amount    *json.Number `json:"amount"`
	Category  *string      `json:"category"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// DraftRequest is the body of create and update calls.
type DraftRequest struct {
	Amount        json.Number `json:"amount"`
	Category      *string     `json:"category"`
	TransactionID int64       `json:"transactionId,omitempty"`
}

// DraftInput is a decoded create/update body before validation. Amount is
// kept as text so the caller decides how to report a bad value.
type DraftInput struct {
	Amount        string
	Category      string
	TransactionID int64
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Encode maps a transaction to its canonical wire form.
func Encode(t core.Transaction) Transaction {
	out := Transaction{ID: t.ID}
	if t.HasAmount() {
		n := json.Number(t.Amount.Decimal.String())
		out.Amount = &n
	}
	if t.HasCategory() {
		c := t.Category
		out.Category = &c
	}
	if !t.CreatedAt.IsZero() {
		ts := t.CreatedAt.UTC()
		out.CreatedAt = &ts
	}
	return out
}

// NewDraftRequest builds the request body for d. A non-zero id marks an
// update and is echoed as transactionId.
func NewDraftRequest(d core.Draft, id int64) DraftRequest {
	req := DraftRequest{
		Amount:        json.Number(d.Amount.String()),
		TransactionID: id,
	}
	if d.Category != "" {
		c := d.Category
		req.Category = &c
	}
	return req
}

// DecodeList decodes a JSON array of transactions.
func DecodeList(r io.Reader) ([]core.Transaction, error) {
	var raw []wireTransaction
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]core.Transaction, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.normalize())
	}
	return out, nil
}

// DecodeOne decodes a single JSON transaction.
func DecodeOne(r io.Reader) (core.Transaction, error) {
	var w wireTransaction
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return w.normalize(), nil
}

// DecodeDraftInput reads a create/update body. Amount may be a JSON number or
// a numeric string; null or absent yields an empty amount.
func DecodeDraftInput(r io.Reader) (DraftInput, error) {
	var body struct {
		Amount        json.RawMessage `json:"amount"`
		Category      *string         `json:"category"`
		TransactionID *int64          `json:"transactionId"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return DraftInput{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	in := DraftInput{Amount: amountText(body.Amount)}
	if body.Category != nil {
		in.Category = *body.Category
	}
	if body.TransactionID != nil {
		in.TransactionID = *body.TransactionID
	}
	return in, nil
}

func (w wireTransaction) normalize() core.Transaction {
	t := core.Transaction{}
	switch {
	case w.ID != nil:
		t.ID = *w.ID
	case w.TransactionID != nil:
		t.ID = *w.TransactionID
	}
	if text := amountText(w.Amount); text != "" {
		if d, err := core.ParseAmount(text); err == nil {
			t.Amount = decimal.NewNullDecimal(d)
		}
	}
	if w.Category != nil {
		t.Category = core.NormalizeCategory(*w.Category)
	}
	t.CreatedAt = parseTimestamp(firstNonEmpty(w.CreatedAt, w.CreatedAtAlt, w.DateTime))
	return t
}

// amountText returns the textual amount in raw, unquoting strings. Other
// JSON kinds (null, bool, objects) yield "".
func amountText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

// parseTimestamp returns the zero time when s is empty or unrecognized.
// Timestamps without a zone are read as UTC.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
