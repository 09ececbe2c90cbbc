package v2controllers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/labstack/echo/v4"
)

// WithdrawController : WithdrawController struct
type WithdrawController struct {
	svc *service.InvoiceFlowService
}

func NewWithdrawController(svc *service.InvoiceFlowService) *WithdrawController {
	return &WithdrawController{svc: svc}
}

type WithdrawRequest struct {
	ID                int64      `json:"id"`
	Token             string     `json:"token"`
	Amount            int64      `json:"amount"`
	Confirmations     []string   `json:"confirmations"`
	RequiredApprovals int        `json:"required_approvals"`
	Executed          bool       `json:"executed"`
	ExecutedAt        *time.Time `json:"executed_at,omitempty"`
}

func (controller *WithdrawController) newWithdrawRequest(request *models.WithdrawRequest) *WithdrawRequest {
	response := &WithdrawRequest{
		ID:                request.ID,
		Token:             request.Token,
		Amount:            request.Amount,
		Confirmations:     models.Owners(request.Confirmations),
		RequiredApprovals: controller.svc.Contract.RequiredApprovals(),
		Executed:          request.Executed,
	}
	if request.Executed {
		response.ExecutedAt = &request.ExecutedAt.Time
	}
	return response
}

type AddWithdrawRequestBody struct {
	Amount int64  `json:"amount"`
	Token  string `json:"token" validate:"required,hex_address"`
}

// AddWithdrawRequest godoc
// @Summary      Request a withdrawal
// @Description  Queues a withdrawal of custodied funds to the payout address, owners only. The caller counts as the first approval.
// @Accept       json
// @Produce      json
// @Tags         Withdrawal
// @Param        withdrawal  body      AddWithdrawRequestBody  true  "Withdrawal"
// @Success      200         {object}  WithdrawRequest
// @Failure      400         {object}  responses.ErrorResponse
// @Failure      401         {object}  responses.ErrorResponse
// @Failure      500         {object}  responses.ErrorResponse
// @Router       /v2/withdrawals [post]
// @Security     OAuth2Password
func (controller *WithdrawController) AddWithdrawRequest(c echo.Context) error {
	caller := tokens.Caller(c)

	var body AddWithdrawRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load withdraw request body: address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid withdraw request body address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	request, err := controller.svc.RegisterWithdrawRequest(c.Request().Context(), caller, body.Amount, common.HexToAddress(body.Token))
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, controller.newWithdrawRequest(request))
}

// ApproveWithdrawRequest godoc
// @Summary      Approve a withdrawal
// @Description  Adds the caller's approval, the withdrawal executes once the threshold is reached. Owners only.
// @Accept       json
// @Produce      json
// @Tags         Withdrawal
// @Param        id   path      int  true  "Withdraw request id"
// @Success      200  {object}  WithdrawRequest
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/withdrawals/{id}/approve [post]
// @Security     OAuth2Password
func (controller *WithdrawController) ApproveWithdrawRequest(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	request, err := controller.svc.ApproveWithdrawRequest(c.Request().Context(), tokens.Caller(c), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, controller.newWithdrawRequest(request))
}

// GetWithdrawRequest godoc
// @Summary      Retrieve a withdrawal
// @Description  Returns a withdraw request with its approvals
// @Accept       json
// @Produce      json
// @Tags         Withdrawal
// @Param        id   path      int  true  "Withdraw request id"
// @Success      200  {object}  WithdrawRequest
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/withdrawals/{id} [get]
// @Security     OAuth2Password
func (controller *WithdrawController) GetWithdrawRequest(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	request, err := controller.svc.GetWithdrawRequest(c.Request().Context(), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	return c.JSON(http.StatusOK, controller.newWithdrawRequest(request))
}
