package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// MessageRefVersion is the major version of the outbox entry format.
const MessageRefVersion = 1

type RefKind string

const (
	RefMessage RefKind = "message"
	// RefGap stands in for entries an outbox dropped on overflow.
	RefGap RefKind = "gap"
)

// MessageRef is what an outbox stores per entry. It references a durable
// message instead of copying it, so consumers dedupe by MessageID.
type MessageRef struct {
	Version   int       `msgpack:"v" json:"v"`
	Kind      RefKind   `msgpack:"kind" json:"kind"`
	MessageID uuid.UUID `msgpack:"message_id" json:"message_id,omitempty"`
	ChatID    uuid.UUID `msgpack:"chat_id" json:"chat_id,omitempty"`
	SenderID  uuid.UUID `msgpack:"sender_id" json:"sender_id,omitempty"`
	Seq       int64     `msgpack:"seq" json:"seq,omitempty"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at,omitempty"`
	Dropped   int64     `msgpack:"dropped,omitempty" json:"dropped,omitempty"`
}

func NewMessageRef(m *Message) MessageRef {
	return MessageRef{
		Version:   MessageRefVersion,
		Kind:      RefMessage,
		MessageID: m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Seq:       m.Seq,
		CreatedAt: m.CreatedAt,
	}
}

func NewGapRef(dropped int64) MessageRef {
	return MessageRef{Version: MessageRefVersion, Kind: RefGap, Dropped: dropped}
}

func (r MessageRef) Encode() ([]byte, error) {
	return msgpack.Marshal(&r)
}

func DecodeMessageRef(data []byte) (MessageRef, error) {
	var r MessageRef
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return MessageRef{}, err
	}
	if r.Version != MessageRefVersion {
		return MessageRef{}, fmt.Errorf("unsupported message ref version %d", r.Version)
	}
	switch r.Kind {
	case RefMessage, RefGap:
	default:
		return MessageRef{}, fmt.Errorf("unknown message ref kind %q", r.Kind)
	}
	return r, nil
}
