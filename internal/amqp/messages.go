package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionRecorded = "transaction.recorded"
	EventCategoryDeleted     = "category.deleted"
)

// TransactionEvent is a lightweight notification: consumers fetch whatever
// detail they need from the database by id.
type TransactionEvent struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind string, id, userID int64) *TransactionEvent {
	return &TransactionEvent{
		Kind:      kind,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
