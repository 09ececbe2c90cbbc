package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// PaymentRecord describes a settled invoice to the receipt registry.
type PaymentRecord struct {
	Contract  string `json:"contract"`
	InvoiceID int64  `json:"invoice_id"`
	Payer     string `json:"payer"`
	Token     string `json:"token"`
	Amount    int64  `json:"amount"`
}

//go:generate mockgen -destination=../../mock_service/receipt.go -package=mock_service github.com/getAlby/invoiceflow/lib/service ReceiptMinter

// ReceiptMinter issues a proof-of-payment record for every settled invoice.
type ReceiptMinter interface {
	RecordPayment(ctx context.Context, record PaymentRecord) (string, error)
}

type NoopReceiptMinter struct{}

func (NoopReceiptMinter) RecordPayment(ctx context.Context, record PaymentRecord) (string, error) {
	return "", nil
}

// HTTPReceiptMinter posts payment records to a receipt registry and retries
// transient failures with exponential backoff.
type HTTPReceiptMinter struct {
	Url            string
	Client         *http.Client
	MaxElapsedTime time.Duration
}

func NewHTTPReceiptMinter(url string) *HTTPReceiptMinter {
	return &HTTPReceiptMinter{
		Url:            url,
		Client:         &http.Client{Timeout: 10 * time.Second},
		MaxElapsedTime: time.Minute,
	}
}

// IdempotencyKey is stable per payment so a retried post never mints twice.
func (record PaymentRecord) IdempotencyKey() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%d", record.Contract, record.InvoiceID))).String()
}

type receiptResponse struct {
	ReceiptID string `json:"receipt_id"`
}

func (m *HTTPReceiptMinter) RecordPayment(ctx context.Context, record PaymentRecord) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	expontentialBackoff := backoff.NewExponentialBackOff()
	expontentialBackoff.MaxInterval = time.Second * 10
	expontentialBackoff.MaxElapsedTime = m.MaxElapsedTime

	idempotencyKey := record.IdempotencyKey()
	var receiptID string
	err = backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)
		resp, err := m.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("receipt registry status code was %d, body: %s", resp.StatusCode, msg)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			msg, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("receipt registry rejected payment record with status code %d, body: %s", resp.StatusCode, msg))
		}
		receipt := receiptResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			return backoff.Permanent(err)
		}
		receiptID = receipt.ReceiptID
		return nil
	}, backoff.WithContext(expontentialBackoff, ctx))
	if err != nil {
		return "", err
	}
	return receiptID, nil
}

// recordReceipt mints the receipt of a committed payment in the background. The payment
// stands whatever the outcome, failures are only reported.
func (svc *InvoiceFlowService) recordReceipt(record PaymentRecord) {
	if svc.ReceiptMinter == nil {
		return
	}
	svc.background.Add(1)
	go func() {
		defer svc.background.Done()
		receiptID, err := svc.ReceiptMinter.RecordPayment(context.Background(), record)
		if err != nil {
			svc.Logger.Errorf("Failed to mint receipt: invoice_id:%d payer:%s error:%v", record.InvoiceID, record.Payer, err)
			sentry.CaptureException(err)
			svc.Metrics.receiptFailed()
			return
		}
		svc.Logger.Infof("Receipt minted: invoice_id:%d payer:%s receipt:%s", record.InvoiceID, record.Payer, receiptID)
	}()
}
