package v2controllers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/labstack/echo/v4"
)

// MintController : admin faucet
type MintController struct {
	svc *service.InvoiceFlowService
}

func NewMintController(svc *service.InvoiceFlowService) *MintController {
	return &MintController{svc: svc}
}

type MintRequestBody struct {
	Token  string `json:"token" validate:"required,hex_address"`
	Holder string `json:"holder" validate:"required,hex_address"`
	Amount int64  `json:"amount"`
}

// Mint godoc
// @Summary      Mint tokens
// @Description  Credits an accepted token to a holder, admin token only
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        mint  body      MintRequestBody  true  "Mint"
// @Success      200   {object}  TokenBalance
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      401   {object}  responses.ErrorResponse
// @Failure      500   {object}  responses.ErrorResponse
// @Router       /v2/admin/mint [post]
func (controller *MintController) Mint(c echo.Context) error {
	var body MintRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load mint request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid mint request body error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	token := common.HexToAddress(body.Token)
	holder := common.HexToAddress(body.Holder)
	if err := controller.svc.Mint(c.Request().Context(), token, holder, body.Amount); err != nil {
		return responses.RespondWithError(c, err)
	}
	balances, err := controller.svc.Balances(c.Request().Context(), holder)
	if err != nil {
		return err
	}
	for _, balance := range balances {
		if balance.Token == token {
			return c.JSON(http.StatusOK, &TokenBalance{Token: token.Hex(), Balance: balance.Balance})
		}
	}
	return c.JSON(http.StatusOK, &TokenBalance{Token: token.Hex()})
}
