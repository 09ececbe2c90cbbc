package responses

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBadAuthErrorsNotAllowedForSentry(t *testing.T) {
	badAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    1,
		"message": "bad auth",
	})

	isAllowed := isErrAllowedForSentry(badAuthErrResponse)
	assert.False(t, isAllowed)
}

func TestNotBadAuthErrorsAllowedForSentry(t *testing.T) {
	notBadAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    2,
		"message": "not bad auth",
	})

	isAllowed := isErrAllowedForSentry(notBadAuthErrResponse)
	assert.True(t, isAllowed)
}

func TestNonErrorResponseErrorsAllowedForSentry(t *testing.T) {
	err := errors.New("random error")

	isAllowed := isErrAllowedForSentry(err)
	assert.True(t, isAllowed)
}

func TestFlowErrorsNotAllowedForSentry(t *testing.T) {
	assert.False(t, isErrAllowedForSentry(service.ErrInvoiceExpired))
	assert.False(t, isErrAllowedForSentry(echo.NewHTTPError(http.StatusUnauthorized, BadAuthError)))
}

func TestFlowErrorResponse(t *testing.T) {
	response := FlowErrorResponse(service.ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, response.HttpStatusCode)
	assert.Equal(t, "UNAUTHORIZED", response.Reason)

	response = FlowErrorResponse(service.ErrAllowanceNotSufficient)
	assert.Equal(t, http.StatusBadRequest, response.HttpStatusCode)
	assert.Equal(t, 3, response.Code)
	assert.Equal(t, "ALLOWANCE_NOT_SUFFICIENT", response.Reason)

	// the shared responses are not modified
	assert.Empty(t, BadArgumentsError.Reason)
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	testCases := []struct {
		err    error
		status int
		body   string
	}{
		{service.ErrInvoiceNotFound, http.StatusBadRequest, `{"error":true,"code":2,"message":"call conflicts with the contract state","reason":"INVOICE_NOT_FOUND"}`},
		{errors.New("db is down"), http.StatusInternalServerError, `{"error":true,"code":6,"message":"Something went wrong. Please try again later"}`},
		{echo.NewHTTPError(http.StatusUnauthorized, BadAuthError), http.StatusUnauthorized, `{"error":true,"code":1,"message":"bad auth"}`},
	}
	for _, tc := range testCases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		HTTPErrorHandler(tc.err, c)
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}
