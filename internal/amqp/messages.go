package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventAccountChanged      EventType = "account.changed"
	EventTransactionRecorded EventType = "transaction.recorded"
)

// AccountEvent tells the reconciler an account needs checking. It carries ids
// only; consumers fetch current state from the data source.
type AccountEvent struct {
	Type          EventType `json:"type"`
	AccountID     int64     `json:"account_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewAccountChanged(accountID int64) *AccountEvent {
	return &AccountEvent{Type: EventAccountChanged, AccountID: accountID, Timestamp: time.Now()}
}

func NewTransactionRecorded(accountID, transactionID int64) *AccountEvent {
	return &AccountEvent{
		Type:          EventTransactionRecorded,
		AccountID:     accountID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *AccountEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AccountEventFromJSON decodes and checks an event.
func AccountEventFromJSON(data []byte) (*AccountEvent, error) {
	var msg AccountEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventAccountChanged, EventTransactionRecorded:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.AccountID <= 0 {
		return nil, fmt.Errorf("event without account id")
	}
	return &msg, nil
}
