package responses

import (
	"errors"
	"net/http"

	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	Reason         string `json:"reason,omitempty"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "not found",
	HttpStatusCode: 404,
}

var flowErrorCodes = map[service.ErrorKind]ErrorResponse{
	service.KindAuthorization: {Error: true, Code: 1, Message: "caller is not allowed to perform this call", HttpStatusCode: http.StatusUnauthorized},
	service.KindValidation:    {Error: true, Code: 8, Message: "invalid call arguments", HttpStatusCode: http.StatusBadRequest},
	service.KindState:         {Error: true, Code: 2, Message: "call conflicts with the contract state", HttpStatusCode: http.StatusBadRequest},
	service.KindFunds:         {Error: true, Code: 3, Message: "token or funds check failed", HttpStatusCode: http.StatusBadRequest},
}

// FlowErrorResponse describes a rejected contract call, Reason carries the error code.
func FlowErrorResponse(err *service.FlowError) ErrorResponse {
	response, ok := flowErrorCodes[err.Kind]
	if !ok {
		response = BadArgumentsError
	}
	response.Reason = err.Code
	return response
}

// RespondWithError answers rejected contract calls with their error response and hands
// everything else to the HTTPErrorHandler.
func RespondWithError(c echo.Context, err error) error {
	var flowErr *service.FlowError
	if errors.As(err, &flowErr) {
		response := FlowErrorResponse(flowErr)
		return c.JSON(response.HttpStatusCode, response)
	}
	return err
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("Address", c.Get("Address"))
			hub.CaptureException(err)
		})
	}
	var flowErr *service.FlowError
	if errors.As(err, &flowErr) {
		response := FlowErrorResponse(flowErr)
		c.JSON(response.HttpStatusCode, response)
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}

// isErrAllowedForSentry filters out client mistakes: bad auth and rejected contract calls.
func isErrAllowedForSentry(err error) bool {
	var flowErr *service.FlowError
	if errors.As(err, &flowErr) {
		return false
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	switch msg := he.Message.(type) {
	case echo.Map:
		if code, ok := msg["code"].(int); ok && code == BadAuthError.Code {
			return false
		}
	case ErrorResponse:
		if msg.Code == BadAuthError.Code {
			return false
		}
	}
	return true
}
