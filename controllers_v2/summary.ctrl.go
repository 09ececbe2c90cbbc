package v2controllers

import (
	"net/http"

	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/labstack/echo/v4"
)

// SummaryController : SummaryController struct
type SummaryController struct {
	svc *service.InvoiceFlowService
}

func NewSummaryController(svc *service.InvoiceFlowService) *SummaryController {
	return &SummaryController{svc: svc}
}

type SummaryResponse struct {
	Contract          string   `json:"contract"`
	Owners            []string `json:"owners"`
	AcceptedTokens    []string `json:"accepted_tokens"`
	PayoutAddress     string   `json:"payout_address"`
	RequiredApprovals int      `json:"required_approvals"`
}

// Summary godoc
// @Summary      Contract summary
// @Description  Owners, accepted tokens, approval threshold and the current payout address
// @Accept       json
// @Produce      json
// @Tags         Info
// @Success      200  {object}  SummaryResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/summary [get]
// @Security     OAuth2Password
func (controller *SummaryController) Summary(c echo.Context) error {
	summary, err := controller.svc.GetSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &SummaryResponse{
		Contract:          summary.Contract.Hex(),
		Owners:            hexes(summary.Owners),
		AcceptedTokens:    hexes(summary.AcceptedTokens),
		PayoutAddress:     summary.PayoutAddress.Hex(),
		RequiredApprovals: summary.RequiredApprovals,
	})
}
