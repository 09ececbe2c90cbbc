package v2controllers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/labstack/echo/v4"
)

// BalanceController : BalanceController struct
type BalanceController struct {
	svc *service.InvoiceFlowService
}

func NewBalanceController(svc *service.InvoiceFlowService) *BalanceController {
	return &BalanceController{svc: svc}
}

type TokenBalance struct {
	Token   string `json:"token"`
	Balance int64  `json:"balance"`
}

type BalanceResponse struct {
	Address  string         `json:"address"`
	Balances []TokenBalance `json:"balances"`
}

type ApproveRequestBody struct {
	Token  string `json:"token" validate:"required,hex_address"`
	Amount int64  `json:"amount"`
}

type AllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Token     string `json:"token"`
	Allowance int64  `json:"allowance"`
}

// Balance godoc
// @Summary      Retrieve balances
// @Description  Native and accepted token balances of an address, the contract address included
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        address  path      string  true  "Address"
// @Success      200      {object}  BalanceResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v2/balances/{address} [get]
// @Security     OAuth2Password
func (controller *BalanceController) Balance(c echo.Context) error {
	address, ok := addressParam(c, "address")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	balances, err := controller.svc.Balances(c.Request().Context(), address)
	if err != nil {
		c.Logger().Errorf("Error fetching balances for address:%s error: %v", address.Hex(), err)
		return err
	}
	response := &BalanceResponse{Address: address.Hex(), Balances: make([]TokenBalance, len(balances))}
	for i, balance := range balances {
		response.Balances[i] = TokenBalance{Token: balance.Token.Hex(), Balance: balance.Balance}
	}
	return c.JSON(http.StatusOK, response)
}

// Approve godoc
// @Summary      Approve the contract
// @Description  Allows the contract to pull up to amount of an accepted token from the caller when settling invoices
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        allowance  body      ApproveRequestBody  true  "Allowance"
// @Success      200        {object}  AllowanceResponse
// @Failure      400        {object}  responses.ErrorResponse
// @Failure      500        {object}  responses.ErrorResponse
// @Router       /v2/allowances [post]
// @Security     OAuth2Password
func (controller *BalanceController) Approve(c echo.Context) error {
	caller := tokens.Caller(c)

	var body ApproveRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load approve request body: address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid approve request body address:%s error: %v", caller.Hex(), err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	token := common.HexToAddress(body.Token)
	if err := controller.svc.ApproveContract(c.Request().Context(), caller, token, body.Amount); err != nil {
		return responses.RespondWithError(c, err)
	}
	allowance, err := controller.svc.Allowance(c.Request().Context(), token, caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &AllowanceResponse{
		Owner:     caller.Hex(),
		Spender:   controller.svc.Contract.Address().Hex(),
		Token:     token.Hex(),
		Allowance: allowance,
	})
}
