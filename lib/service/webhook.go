package service

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/getAlby/invoiceflow/db/models"
)

func (svc *InvoiceFlowService) StartWebhookSubscription(ctx context.Context) {

	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)
	events, unsubscribe, err := svc.SubscribeToEvents()
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			svc.postToWebhook(ctx, event)
		}
	}
}

func (svc *InvoiceFlowService) postToWebhook(ctx context.Context, event models.Event) {

	payload := new(bytes.Buffer)
	err := svc.EncodeEventPayload(ctx, payload, event)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.Config.WebhookUrl, payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
