package v2controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"
)

// InvoiceController : Invoice controller struct
type InvoiceController struct {
	svc *service.InvoiceFlowService
}

func NewInvoiceController(svc *service.InvoiceFlowService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID        int64     `json:"id"`
	Customer  string    `json:"customer"`
	Token     string    `json:"token"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
	IsExpired bool      `json:"is_expired"`
}

func newInvoice(invoice *models.Invoice) *Invoice {
	return &Invoice{
		ID:        invoice.ID,
		Customer:  invoice.Customer,
		Token:     invoice.Token,
		Amount:    invoice.Amount,
		ExpiresAt: invoice.ExpiresAt,
		IsExpired: invoice.IsExpired(time.Now()),
	}
}

type GetInvoiceIDsResponseBody struct {
	InvoiceIDs []int64 `json:"invoice_ids"`
}

type AddInvoiceRequestBody struct {
	ID               int64  `json:"id"`
	Customer         string `json:"customer" validate:"required,hex_address"`
	Amount           int64  `json:"amount"`
	Token            string `json:"token" validate:"required,hex_address"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type SettleInvoiceRequestBody struct {
	Value int64 `json:"value" validate:"gte=0"`
}

// GetInvoiceIDs godoc
// @Summary      List invoice ids
// @Description  Returns the ids of all unpaid and not removed invoices
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoiceIDsResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoiceIDs(c echo.Context) error {
	ids, err := controller.svc.GetInvoiceIDs(c.Request().Context())
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []int64{}
	}
	return c.JSON(http.StatusOK, &GetInvoiceIDsResponseBody{InvoiceIDs: ids})
}

// GetInvoice godoc
// @Summary      Retrieve an invoice
// @Description  Returns a live invoice
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoice(invoice))
}

// QR godoc
// @Summary      Invoice QR code
// @Description  PNG QR code of the payment URI of an invoice
// @Produce      png
// @Tags         Invoice
// @Param        id   path  int  true  "Invoice id"
// @Success      200
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id}/qr [get]
// @Security     OAuth2Password
func (controller *InvoiceController) QR(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	png, err := qrcode.Encode(PaymentURI(controller.svc.Contract.Address(), invoice), qrcode.Medium, 256)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// PaymentURI is the EIP-681 call of settleInvoice for invoice, native invoices carry their value.
func PaymentURI(contract common.Address, invoice *models.Invoice) string {
	uri := fmt.Sprintf("ethereum:%s/settleInvoice?uint256=%d", contract.Hex(), invoice.ID)
	if common.HexToAddress(invoice.Token) == ledger.NativeToken {
		uri = fmt.Sprintf("%s&value=%d", uri, invoice.Amount)
	}
	return uri
}

// AddInvoice godoc
// @Summary      Register an invoice
// @Description  Registers an invoice for a customer, owners only
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      AddInvoiceRequestBody  true  "Invoice"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      401      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v2/invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	caller := tokens.Caller(c)

	var body AddInvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load add invoice request body: address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid add invoice request body address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.RegisterInvoice(c.Request().Context(), caller, body.ID, common.HexToAddress(body.Customer), body.Amount, common.HexToAddress(body.Token), body.ExpiresInSeconds)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoice(invoice))
}

// RemoveInvoice godoc
// @Summary      Remove an invoice
// @Description  Removes a live invoice, owners only
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id} [delete]
// @Security     OAuth2Password
func (controller *InvoiceController) RemoveInvoice(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.RemoveInvoice(c.Request().Context(), tokens.Caller(c), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoice(invoice))
}

// SettleInvoice godoc
// @Summary      Settle an invoice
// @Description  Pays an invoice from the caller's funds. Native invoices need value to match the amount.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id      path      int                       true  "Invoice id"
// @Param        settle  body      SettleInvoiceRequestBody  true  "Native value sent with the call"
// @Success      200     {object}  Invoice
// @Failure      400     {object}  responses.ErrorResponse
// @Failure      500     {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id}/settle [post]
// @Security     OAuth2Password
func (controller *InvoiceController) SettleInvoice(c echo.Context) error {
	payer := tokens.Caller(c)
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	var body SettleInvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load settle invoice request body: address:%s error: %v", payer.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid settle invoice request body address:%s error: %v", payer.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.SettleInvoice(c.Request().Context(), payer, id, body.Value)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoice(invoice))
}
