package integration_tests

import (
	"fmt"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InvoiceTestSuite struct {
	TestSuite
	clock *fixedClock
}

func (suite *InvoiceTestSuite) SetupTest() {
	svc, err := InvoiceFlowTestServiceInit(1)
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.clock = &fixedClock{now: time.Now()}
	svc.Clock = suite.clock.Now
	suite.setupEcho(svc)
}

func (suite *InvoiceTestSuite) TestRegisterAndList() {
	invoice := suite.registerInvoice(7, tokenUSD, 500, 3600)
	assert.Equal(suite.T(), int64(7), invoice.ID)
	assert.Equal(suite.T(), customer.Hex(), invoice.Customer)
	assert.Equal(suite.T(), tokenUSD.Hex(), invoice.Token)
	assert.Equal(suite.T(), int64(500), invoice.Amount)
	suite.registerInvoice(3, nativeToken, 100, 3600)

	rec := suite.do(http.MethodGet, "/v2/invoices", stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	ids := &ExpectedInvoiceIDsResponseBody{}
	suite.decode(rec, ids)
	assert.Equal(suite.T(), []int64{3, 7}, ids.InvoiceIDs)

	rec = suite.do(http.MethodGet, "/v2/invoices/7", stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	fetched := &ExpectedInvoice{}
	suite.decode(rec, fetched)
	assert.Equal(suite.T(), invoice.ExpiresAt.Unix(), fetched.ExpiresAt.Unix())
}

func (suite *InvoiceTestSuite) TestListEmpty() {
	rec := suite.do(http.MethodGet, "/v2/invoices", stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"invoice_ids":[]}`, rec.Body.String())
}

func (suite *InvoiceTestSuite) TestRegisterRejected() {
	body := &ExpectedAddInvoiceRequestBody{ID: 1, Customer: customer.Hex(), Amount: 10, Token: tokenUSD.Hex(), ExpiresInSeconds: 60}
	rec := suite.do(http.MethodPost, "/v2/invoices", stranger, body)
	assert.Equal(suite.T(), "UNAUTHORIZED", suite.checkErrResponse(rec, http.StatusUnauthorized))

	suite.registerInvoice(1, tokenUSD, 10, 60)
	rec = suite.do(http.MethodPost, "/v2/invoices", ownerB, body)
	assert.Equal(suite.T(), "INVOICE_ALREADY_EXIST", suite.checkErrResponse(rec, http.StatusBadRequest))

	for code, invalid := range map[string]*ExpectedAddInvoiceRequestBody{
		"INVALID_INVOICE_ID":        {ID: 0, Customer: customer.Hex(), Amount: 10, Token: tokenUSD.Hex(), ExpiresInSeconds: 60},
		"INVALID_AMOUNT":            {ID: 2, Customer: customer.Hex(), Amount: 0, Token: tokenUSD.Hex(), ExpiresInSeconds: 60},
		"INVALID_EXPIRATION_VALUE":  {ID: 2, Customer: customer.Hex(), Amount: 10, Token: tokenUSD.Hex(), ExpiresInSeconds: 0},
		"ERC20_TOKEN_NOT_SUPPORTED": {ID: 2, Customer: customer.Hex(), Amount: 10, Token: stranger.Hex(), ExpiresInSeconds: 60},
		"INVALID_ADDRESS":           {ID: 2, Customer: nativeToken.Hex(), Amount: 10, Token: tokenUSD.Hex(), ExpiresInSeconds: 60},
	} {
		rec = suite.do(http.MethodPost, "/v2/invoices", ownerA, invalid)
		assert.Equal(suite.T(), code, suite.checkErrResponse(rec, http.StatusBadRequest))
	}

	rec = suite.do(http.MethodPost, "/v2/invoices", ownerA, &ExpectedAddInvoiceRequestBody{ID: 2, Customer: "0x123", Amount: 10, Token: tokenUSD.Hex(), ExpiresInSeconds: 60})
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *InvoiceTestSuite) TestGetUnknownInvoice() {
	rec := suite.do(http.MethodGet, "/v2/invoices/99", stranger, nil)
	assert.Equal(suite.T(), "INVOICE_NOT_FOUND", suite.checkErrResponse(rec, http.StatusBadRequest))

	rec = suite.do(http.MethodGet, "/v2/invoices/abc", stranger, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *InvoiceTestSuite) TestRemoveInvoice() {
	suite.registerInvoice(5, tokenUSD, 10, 60)

	rec := suite.do(http.MethodDelete, "/v2/invoices/5", stranger, nil)
	assert.Equal(suite.T(), "UNAUTHORIZED", suite.checkErrResponse(rec, http.StatusUnauthorized))

	rec = suite.do(http.MethodDelete, "/v2/invoices/5", ownerC, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	rec = suite.do(http.MethodDelete, "/v2/invoices/5", ownerC, nil)
	assert.Equal(suite.T(), "INVOICE_NOT_FOUND", suite.checkErrResponse(rec, http.StatusBadRequest))
}

func (suite *InvoiceTestSuite) TestSettleNativeInvoice() {
	suite.registerInvoice(1, nativeToken, 100, 3600)
	suite.mint(nativeToken, payer, 150)

	rec := suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{Value: 99})
	assert.Equal(suite.T(), "SENT_AMOUNT_NOT_MATCH", suite.checkErrResponse(rec, http.StatusBadRequest))

	rec = suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{Value: 100})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), int64(50), suite.balanceOf(payer, nativeToken))
	assert.Equal(suite.T(), int64(100), suite.balanceOf(contractAddress, nativeToken))

	rec = suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{Value: 100})
	assert.Equal(suite.T(), "INVOICE_NOT_FOUND", suite.checkErrResponse(rec, http.StatusBadRequest))
}

func (suite *InvoiceTestSuite) TestSettleTokenInvoice() {
	suite.registerInvoice(1, tokenUSD, 300, 3600)
	suite.mint(tokenUSD, payer, 1000)

	rec := suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{})
	assert.Equal(suite.T(), "ALLOWANCE_NOT_SUFFICIENT", suite.checkErrResponse(rec, http.StatusBadRequest))

	rec = suite.do(http.MethodPost, "/v2/allowances", payer, &ExpectedApproveRequestBody{Token: tokenUSD.Hex(), Amount: 300})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	allowance := &ExpectedAllowanceResponse{}
	suite.decode(rec, allowance)
	assert.Equal(suite.T(), int64(300), allowance.Allowance)
	assert.Equal(suite.T(), contractAddress.Hex(), allowance.Spender)

	rec = suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{Value: 1})
	assert.Equal(suite.T(), "SENT_AMOUNT_NOT_MATCH", suite.checkErrResponse(rec, http.StatusBadRequest))

	rec = suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), int64(700), suite.balanceOf(payer, tokenUSD))
	assert.Equal(suite.T(), int64(300), suite.balanceOf(contractAddress, tokenUSD))
}

func (suite *InvoiceTestSuite) TestSettleExpiredInvoice() {
	suite.registerInvoice(1, nativeToken, 100, 60)
	suite.mint(nativeToken, payer, 100)
	suite.clock.now = suite.clock.now.Add(time.Minute)

	rec := suite.do(http.MethodPost, "/v2/invoices/1/settle", payer, &ExpectedSettleInvoiceRequestBody{Value: 100})
	assert.Equal(suite.T(), "INVOICE_EXPIRED", suite.checkErrResponse(rec, http.StatusBadRequest))
	assert.Equal(suite.T(), int64(100), suite.balanceOf(payer, nativeToken))
}

func (suite *InvoiceTestSuite) TestInvoiceQR() {
	suite.registerInvoice(1, nativeToken, 100, 60)

	rec := suite.do(http.MethodGet, "/v2/invoices/1/qr", stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(suite.T(), "\x89PNG", rec.Body.String()[:4])

	rec = suite.do(http.MethodGet, fmt.Sprintf("/v2/invoices/%d/qr", 2), stranger, nil)
	assert.Equal(suite.T(), "INVOICE_NOT_FOUND", suite.checkErrResponse(rec, http.StatusBadRequest))
}

func (suite *InvoiceTestSuite) TestInvoicePDF() {
	suite.registerInvoice(1, tokenUSD, 100, 60)

	rec := suite.do(http.MethodGet, "/v2/invoices/1/pdf", stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(suite.T(), "inline; filename=invoice-1.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(suite.T(), "%PDF", rec.Body.String()[:4])

	rec = suite.do(http.MethodGet, "/v2/invoices/2/pdf", stranger, nil)
	assert.Equal(suite.T(), "INVOICE_NOT_FOUND", suite.checkErrResponse(rec, http.StatusBadRequest))
}

func TestInvoiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceTestSuite))
}
