package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/logging"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/getAlby/invoiceflow/lib/transport"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const adminToken = "admin-secret"

var (
	contractAddress = common.HexToAddress("0xc0ffee254729296a45a3885639AC7E10F9d54979")
	ownerA          = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ownerB          = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	ownerC          = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	stranger        = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	customer        = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	payer           = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	payoutAddress   = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	newPayout       = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	tokenUSD        = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	nativeToken     = ledger.NativeToken
)

func InvoiceFlowTestServiceInit(requiredApprovals int) (svc *service.InvoiceFlowService, err error) {
	c := &service.Config{
		Ledger:               "memory",
		JWTSecret:            []byte("SECRET"),
		JWTAccessTokenExpiry: 3600,
		AdminToken:           adminToken,
		DefaultRateLimit:     1000,
		StrictRateLimit:      1000,
		BurstRateLimit:       1000,
	}
	contract, err := service.NewContractConfig(contractAddress, []common.Address{ownerA, ownerB, ownerC}, []common.Address{tokenUSD}, requiredApprovals, payoutAddress)
	if err != nil {
		return nil, err
	}
	svc = &service.InvoiceFlowService{
		Config:        c,
		Contract:      contract,
		Ledger:        ledger.NewMemory(),
		Logger:        logging.Logger(c.LogFilePath),
		EventPubSub:   service.NewPubsub(),
		ReceiptMinter: service.NoopReceiptMinter{},
	}
	if err := svc.Init(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

type TestSuite struct {
	suite.Suite
	echo    *echo.Echo
	service *service.InvoiceFlowService
}

// setupEcho wires svc exactly like the server does.
func (suite *TestSuite) setupEcho(svc *service.InvoiceFlowService) {
	suite.service = svc
	e := transport.InitEcho(svc.Config, svc.Logger)
	logMw := transport.CreateLoggingMiddleware(svc.Logger)
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(svc.Config.StrictRateLimit, svc.Config.BurstRateLimit)
	secured := e.Group("", tokens.Middleware(svc.Config.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(svc.Config.JWTSecret), strictRateLimitMiddleware, logMw)
	transport.RegisterV2Endpoints(svc, e, secured, securedWithStrictRateLimit, strictRateLimitMiddleware, tokens.AdminTokenMiddleware(svc.Config.AdminToken), logMw)
	suite.echo = e
}

func (suite *TestSuite) tokenFor(address common.Address) string {
	token, err := tokens.GenerateAccessToken(suite.service.Config.JWTSecret, suite.service.Config.JWTAccessTokenExpiry, address)
	assert.NoError(suite.T(), err)
	return token
}

// do sends body as JSON, authenticated as caller unless caller is the zero address.
func (suite *TestSuite) do(method, path string, caller common.Address, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != (common.Address{}) {
		req.Header.Set(echo.HeaderAuthorization, fmt.Sprintf("Bearer %s", suite.tokenFor(caller)))
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *TestSuite) decode(rec *httptest.ResponseRecorder, target interface{}) {
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(target))
}

// checkErrResponse asserts a rejected contract call and returns its error code.
func (suite *TestSuite) checkErrResponse(rec *httptest.ResponseRecorder, status int) string {
	errorResponse := &responses.ErrorResponse{}
	assert.Equal(suite.T(), status, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(errorResponse))
	assert.True(suite.T(), errorResponse.Error)
	return errorResponse.Reason
}

func (suite *TestSuite) mint(token, holder common.Address, amount int64) {
	var buf bytes.Buffer
	assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(&ExpectedMintRequestBody{
		Token:  token.Hex(),
		Holder: holder.Hex(),
		Amount: amount,
	}))
	req := httptest.NewRequest(http.MethodPost, "/v2/admin/mint", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, fmt.Sprintf("Bearer %s", adminToken))
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *TestSuite) registerInvoice(id int64, token common.Address, amount int64, expiresInSeconds int64) *ExpectedInvoice {
	rec := suite.do(http.MethodPost, "/v2/invoices", ownerA, &ExpectedAddInvoiceRequestBody{
		ID:               id,
		Customer:         customer.Hex(),
		Amount:           amount,
		Token:            token.Hex(),
		ExpiresInSeconds: expiresInSeconds,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	invoice := &ExpectedInvoice{}
	suite.decode(rec, invoice)
	return invoice
}

func (suite *TestSuite) balanceOf(holder, token common.Address) int64 {
	rec := suite.do(http.MethodGet, "/v2/balances/"+holder.Hex(), ownerA, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	response := &ExpectedBalanceResponse{}
	suite.decode(rec, response)
	for _, balance := range response.Balances {
		if balance.Token == token.Hex() {
			return balance.Balance
		}
	}
	suite.T().Errorf("no balance for token %s", token.Hex())
	return 0
}

// fixedClock pins the service clock so expiry can be crossed without sleeping.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func httpGet(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderAuthorization, fmt.Sprintf("Bearer %s", token))
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
