package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/rs/zerolog"
)

// SubjectPrefix roots every subject this process publishes on.
const SubjectPrefix = "relay.user"

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS and keeps reconnecting forever.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}

// Subject is where events for one user are published, e.g.
// relay.user.<id>.message.
func Subject(userID uuid.UUID, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, userID, eventType)
}

// NATSNotifier publishes every event on a per-user subject so other
// instances and services can follow along. A successful publish says
// nothing about whether a client saw the event.
type NATSNotifier struct {
	pub Publisher
}

func NewNATSNotifier(pub Publisher) *NATSNotifier {
	return &NATSNotifier{pub: pub}
}

func (n *NATSNotifier) publish(userID uuid.UUID, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return n.pub.Publish(Subject(userID, evt.Type), data)
}

func (n *NATSNotifier) DeliverMessage(_ context.Context, recipientID uuid.UUID, msg *models.Message) error {
	return n.publish(recipientID, MessageEvent(msg))
}

func (n *NATSNotifier) MessageUpdated(_ context.Context, recipientID uuid.UUID, msg *models.Message) error {
	return n.publish(recipientID, MessageUpdatedEvent(msg))
}

func (n *NATSNotifier) ReceiptUpdated(_ context.Context, senderID uuid.UUID, r *models.MessageReceipt) error {
	return n.publish(senderID, ReceiptEvent(r))
}

func (n *NATSNotifier) TypingChanged(_ context.Context, recipientID, chatID, typerID uuid.UUID, typing bool) error {
	return n.publish(recipientID, TypingEvent(chatID, typerID, typing))
}
