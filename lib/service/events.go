package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/getAlby/invoiceflow/db/models"
)

const eventBufferSize = 64

func (svc *InvoiceFlowService) publishEvents(events []models.Event) {
	for _, event := range events {
		svc.Metrics.eventCommitted(event.Type)
		if svc.EventPubSub != nil {
			svc.EventPubSub.Publish(event.Type, event)
		}
	}
}

// SubscribeToEvents returns a channel receiving every event type, plus the func that
// ends the subscription.
func (svc *InvoiceFlowService) SubscribeToEvents() (chan models.Event, func(), error) {
	ch := make(chan models.Event, eventBufferSize)
	subId, err := svc.EventPubSub.Subscribe(TopicAll, ch)
	if err != nil {
		return nil, nil, err
	}
	return ch, func() { svc.EventPubSub.Unsubscribe(subId, TopicAll) }, nil
}

// EventPayload is the shape events take outside of the process.
type EventPayload struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Contract  string          `json:"contract"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

func (svc *InvoiceFlowService) NewEventPayload(event models.Event) EventPayload {
	return EventPayload{
		ID:        event.ID,
		Type:      event.Type,
		Contract:  svc.Contract.Address().Hex(),
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt.Unix(),
	}
}

func (svc *InvoiceFlowService) EncodeEventPayload(ctx context.Context, w io.Writer, event models.Event) error {
	return json.NewEncoder(w).Encode(svc.NewEventPayload(event))
}
