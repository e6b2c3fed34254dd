package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is stamped on every published body so a consumer can reject
// messages meant for another queue bound to the same exchange.
const MessageType = "transaction.sync"

// TransactionSyncMessage asks the worker to export one stored transaction.
// It carries only the id and version; the worker reads the row itself.
type TransactionSyncMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id string, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Type:      MessageType,
		ID:        id,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

func (m *TransactionSyncMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeTransactionSyncMessage rejects bodies without an id or with a
// foreign type. A missing type is accepted.
func DecodeTransactionSyncMessage(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode sync message: %w", err)
	}
	if msg.Type != "" && msg.Type != MessageType {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.ID == "" {
		return nil, errMissingID
	}
	return &msg, nil
}
