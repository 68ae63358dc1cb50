package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Change operations carried by TransactionChangedMessage.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// TransactionChangedMessage announces a committed write. It carries only the
// id; subscribers reload the collection to see the new state.
type TransactionChangedMessage struct {
	EventID       string    `json:"event_id"`
	Operation     string    `json:"operation"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionChangedMessage(op string, id int64) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		EventID:       uuid.NewString(),
		Operation:     op,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON decodes and validates a message.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Operation {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown operation %q", msg.Operation)
	}
	if msg.TransactionID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", msg.TransactionID)
	}
	return &msg, nil
}
