package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/mock_service"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSettleRecordsReceipt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	svc, _, err := newTestService(ledger.NewMemory(), 1, ownerA)
	assert.NoError(t, err)
	minter := mock_service.NewMockReceiptMinter(ctrl)
	svc.ReceiptMinter = minter

	minter.EXPECT().
		RecordPayment(gomock.Any(), gomock.Eq(service.PaymentRecord{
			Contract:  contractAddress.Hex(),
			InvoiceID: 3,
			Payer:     payer.Hex(),
			Token:     ledger.NativeToken.Hex(),
			Amount:    40,
		})).
		Times(1).
		Return("receipt-3", nil)

	assert.NoError(t, svc.Mint(ctx, ledger.NativeToken, payer, 40))
	_, err = svc.RegisterInvoice(ctx, ownerA, 3, customer, 40, ledger.NativeToken, 60)
	assert.NoError(t, err)
	_, err = svc.SettleInvoice(ctx, payer, 3, 40)
	assert.NoError(t, err)
	svc.WaitBackground()
}

func TestReceiptFailureKeepsPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	svc, _, err := newTestService(ledger.NewMemory(), 1, ownerA)
	assert.NoError(t, err)
	minter := mock_service.NewMockReceiptMinter(ctrl)
	svc.ReceiptMinter = minter
	minter.EXPECT().
		RecordPayment(gomock.Any(), gomock.Any()).
		Times(1).
		Return("", errors.New("registry unavailable"))

	assert.NoError(t, svc.Mint(ctx, ledger.NativeToken, payer, 40))
	_, err = svc.RegisterInvoice(ctx, ownerA, 3, customer, 40, ledger.NativeToken, 60)
	assert.NoError(t, err)
	_, err = svc.SettleInvoice(ctx, payer, 3, 40)
	assert.NoError(t, err)
	svc.WaitBackground()

	_, err = svc.GetInvoice(ctx, 3)
	assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
	balances, err := svc.Balances(ctx, contractAddress)
	assert.NoError(t, err)
	assert.Equal(t, int64(40), balances[0].Balance)
}

func TestHTTPReceiptMinter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// first attempt fails, the retry succeeds
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		record := service.PaymentRecord{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, int64(12), record.InvoiceID)
		assert.Equal(t, record.IdempotencyKey(), r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"receipt_id":"rcpt_12"}`))
	}))
	defer srv.Close()

	minter := service.NewHTTPReceiptMinter(srv.URL)
	minter.MaxElapsedTime = 10 * time.Second
	receiptID, err := minter.RecordPayment(context.Background(), service.PaymentRecord{InvoiceID: 12, Amount: 5})
	assert.NoError(t, err)
	assert.Equal(t, "rcpt_12", receiptID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPReceiptMinterRejected(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := service.NewHTTPReceiptMinter(srv.URL).RecordPayment(context.Background(), service.PaymentRecord{InvoiceID: 1})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPaymentRecordIdempotencyKey(t *testing.T) {
	record := service.PaymentRecord{Contract: contractAddress.Hex(), InvoiceID: 7, Payer: payer.Hex(), Amount: 1}
	retry := service.PaymentRecord{Contract: contractAddress.Hex(), InvoiceID: 7, Payer: customer.Hex(), Amount: 2}
	other := service.PaymentRecord{Contract: contractAddress.Hex(), InvoiceID: 8}

	_, err := uuid.Parse(record.IdempotencyKey())
	assert.NoError(t, err)
	assert.Equal(t, record.IdempotencyKey(), retry.IdempotencyKey())
	assert.NotEqual(t, record.IdempotencyKey(), other.IdempotencyKey())
}
