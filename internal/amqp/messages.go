package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventTransactionRecorded is the event name carried by every message.
const EventTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage announces a transaction stored by the
// collaborator service. It carries only the id; consumers load the record
// from the database.
type TransactionRecordedMessage struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(id string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Event:     EventTransactionRecorded,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes a message; an empty id is an error.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message has no transaction id")
	}
	return &msg, nil
}
