package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestDecodeList_NormalizesFieldNames(t *testing.T) {
	body := `[
		{"id": 1, "amount": 12.5, "category": " Food ", "createdAt": "2025-03-01T10:00:00Z"},
		{"transactionId": 2, "amount": "7,25", "category": null, "created_at": "2025-03-02T11:30:00.123Z"},
		{"transactionId": 3, "amount": null, "category": "   ", "dateTime": "2025-03-03T08:15:00"},
		{"id": 4, "amount": "abc", "category": "Rent"},
		{"id": 5, "category": "Misc", "createdAt": "yesterday"}
	]`

	got, err := DecodeList(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, int64(1), got[0].ID)
	assert.True(t, got[0].Amount.Decimal.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Food", got[0].Category)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), got[0].CreatedAt)

	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, "7.25", got[1].Amount.Decimal.String())
	assert.False(t, got[1].HasCategory())
	assert.Equal(t, 123*time.Millisecond, time.Duration(got[1].CreatedAt.Nanosecond()))

	assert.Equal(t, int64(3), got[2].ID)
	assert.False(t, got[2].HasAmount())
	assert.False(t, got[2].HasCategory())
	assert.Equal(t, time.Date(2025, 3, 3, 8, 15, 0, 0, time.UTC), got[2].CreatedAt)

	assert.False(t, got[3].HasAmount(), "malformed amounts are kept but unusable")
	assert.Equal(t, "Rent", got[3].Category)

	assert.False(t, got[4].HasAmount())
	assert.True(t, got[4].CreatedAt.IsZero())
}

func TestDecodeList_IDPrefersCanonicalName(t *testing.T) {
	got, err := DecodeList(strings.NewReader(`[{"id": 9, "transactionId": 8, "amount": 1}]`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got[0].ID)
}

func TestDecode_MalformedIsTransportFailure(t *testing.T) {
	for _, body := range []string{`not json`, `{"id": 1}`, `[{"id": "x"}]`, ``} {
		_, err := DecodeList(strings.NewReader(body))
		require.Error(t, err, body)
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.ErrorIs(t, err, ErrTransport)
	}

	_, err := DecodeOne(strings.NewReader(`[1,2]`))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestEncode(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	tx := core.Transaction{
		ID:        7,
		Amount:    decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		Category:  "Food",
		CreatedAt: at,
	}
	data, err := json.Marshal(Encode(tx))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"amount":12.5,"category":"Food","createdAt":"2025-03-01T09:00:00Z"}`, string(data))

	data, err = json.Marshal(Encode(core.Transaction{ID: 8}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":8,"amount":null,"category":null}`, string(data))
}

func TestNewDraftRequest(t *testing.T) {
	d, err := core.NewDraft("12,5", " Food ")
	require.NoError(t, err)

	data, err := json.Marshal(NewDraftRequest(d, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":12.5,"category":"Food"}`, string(data))

	d, err = core.NewDraft("-3", "")
	require.NoError(t, err)
	data, err = json.Marshal(NewDraftRequest(d, 42))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":-3,"category":null,"transactionId":42}`, string(data))
}

func TestDecodeDraftInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want DraftInput
	}{
		{"number", `{"amount": 10.5, "category": "Food"}`, DraftInput{Amount: "10.5", Category: "Food"}},
		{"string", `{"amount": "10,5"}`, DraftInput{Amount: "10,5"}},
		{"null", `{"amount": null, "category": null}`, DraftInput{}},
		{"bool", `{"amount": true}`, DraftInput{}},
		{"with id", `{"amount": 1, "transactionId": 3}`, DraftInput{Amount: "1", TransactionID: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDraftInput(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeDraftInput(strings.NewReader(`{"amount":`))
	assert.ErrorIs(t, err, ErrInvalidBody)
}
