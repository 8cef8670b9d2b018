package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind identifies which table an export message refers to.
type RecordKind string

const (
	KindFactura RecordKind = "factura"
	KindGasto   RecordKind = "gasto"
)

// RecordExportMessage is the lightweight payload queued for the export
// worker. It carries only the record identity; the worker reloads the full
// row from the database so stale payloads can never overwrite fresh data.
type RecordExportMessage struct {
	Kind      RecordKind `json:"kind"`
	ID        int64      `json:"id"`
	Version   int64      `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewRecordExportMessage creates a new export message for a record.
func NewRecordExportMessage(kind RecordKind, id, version int64) *RecordExportMessage {
	return &RecordExportMessage{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordExportMessageFromJSON creates a message from JSON bytes
func RecordExportMessageFromJSON(data []byte) (*RecordExportMessage, error) {
	var msg RecordExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindFactura, KindGasto:
	default:
		return nil, fmt.Errorf("unknown record kind: %q", msg.Kind)
	}
	return &msg, nil
}
