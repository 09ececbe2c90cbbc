package v2controllers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/labstack/echo/v4"
)

// WithdrawAddressController : WithdrawAddressController struct
type WithdrawAddressController struct {
	svc *service.InvoiceFlowService
}

func NewWithdrawAddressController(svc *service.InvoiceFlowService) *WithdrawAddressController {
	return &WithdrawAddressController{svc: svc}
}

// WithdrawAddressProposal has an empty pending address when no change is pending.
type WithdrawAddressProposal struct {
	PendingAddress string   `json:"pending_address"`
	Confirmations  []string `json:"confirmations"`
}

func newWithdrawAddressProposal(proposal *models.WithdrawAddressProposal) *WithdrawAddressProposal {
	return &WithdrawAddressProposal{
		PendingAddress: proposal.PendingAddress,
		Confirmations:  models.Owners(proposal.Confirmations),
	}
}

type ProposeWithdrawAddressRequestBody struct {
	Address string `json:"address" validate:"required,hex_address"`
}

// GetProposal godoc
// @Summary      Pending withdraw address change
// @Description  Returns the pending payout address change and its confirmations
// @Accept       json
// @Produce      json
// @Tags         WithdrawAddress
// @Success      200  {object}  WithdrawAddressProposal
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/withdraw-address [get]
// @Security     OAuth2Password
func (controller *WithdrawAddressController) GetProposal(c echo.Context) error {
	proposal, err := controller.svc.GetWithdrawAddressProposal(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newWithdrawAddressProposal(proposal))
}

// Propose godoc
// @Summary      Propose a withdraw address
// @Description  Replaces any pending change with a change to address, confirmed by the caller. Owners only.
// @Accept       json
// @Produce      json
// @Tags         WithdrawAddress
// @Param        proposal  body      ProposeWithdrawAddressRequestBody  true  "New payout address"
// @Success      200       {object}  WithdrawAddressProposal
// @Failure      400       {object}  responses.ErrorResponse
// @Failure      401       {object}  responses.ErrorResponse
// @Failure      500       {object}  responses.ErrorResponse
// @Router       /v2/withdraw-address [post]
// @Security     OAuth2Password
func (controller *WithdrawAddressController) Propose(c echo.Context) error {
	caller := tokens.Caller(c)

	var body ProposeWithdrawAddressRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load withdraw address request body: address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid withdraw address request body address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	proposal, err := controller.svc.ProposeWithdrawAddress(c.Request().Context(), caller, common.HexToAddress(body.Address))
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newWithdrawAddressProposal(proposal))
}

// Confirm godoc
// @Summary      Confirm the withdraw address change
// @Description  Adds the caller's confirmation, the payout address changes once the threshold is reached. Owners only.
// @Accept       json
// @Produce      json
// @Tags         WithdrawAddress
// @Success      200  {object}  WithdrawAddressProposal
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/withdraw-address/confirm [post]
// @Security     OAuth2Password
func (controller *WithdrawAddressController) Confirm(c echo.Context) error {
	proposal, err := controller.svc.ConfirmWithdrawAddressChange(c.Request().Context(), tokens.Caller(c))
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, newWithdrawAddressProposal(proposal))
}
