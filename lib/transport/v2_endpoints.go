package transport

import (
	v2controllers "github.com/getAlby/invoiceflow/controllers_v2"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterV2Endpoints(svc *service.InvoiceFlowService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.POST("/auth", v2controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	e.GET("/v2/health", v2controllers.NewHealthController().Check)
	//require admin token for the faucet
	if svc.Config.AdminToken != "" {
		e.POST("/v2/admin/mint", v2controllers.NewMintController(svc).Mint, strictRateLimitMiddleware, adminMw, logMw)
	}

	invoiceCtrl := v2controllers.NewInvoiceController(svc)
	withdrawCtrl := v2controllers.NewWithdrawController(svc)
	withdrawAddressCtrl := v2controllers.NewWithdrawAddressController(svc)
	balanceCtrl := v2controllers.NewBalanceController(svc)

	secured.GET("/v2/summary", v2controllers.NewSummaryController(svc).Summary)
	secured.GET("/v2/events", v2controllers.NewEventsController(svc).GetEvents)

	secured.GET("/v2/invoices", invoiceCtrl.GetInvoiceIDs)
	secured.GET("/v2/invoices/:id", invoiceCtrl.GetInvoice)
	secured.GET("/v2/invoices/:id/qr", invoiceCtrl.QR)
	secured.GET("/v2/invoices/:id/pdf", invoiceCtrl.PDF)
	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.DELETE("/v2/invoices/:id", invoiceCtrl.RemoveInvoice)
	securedWithStrictRateLimit.POST("/v2/invoices/:id/settle", invoiceCtrl.SettleInvoice)

	secured.GET("/v2/withdrawals/:id", withdrawCtrl.GetWithdrawRequest)
	securedWithStrictRateLimit.POST("/v2/withdrawals", withdrawCtrl.AddWithdrawRequest)
	securedWithStrictRateLimit.POST("/v2/withdrawals/:id/approve", withdrawCtrl.ApproveWithdrawRequest)

	secured.GET("/v2/withdraw-address", withdrawAddressCtrl.GetProposal)
	secured.POST("/v2/withdraw-address", withdrawAddressCtrl.Propose)
	secured.POST("/v2/withdraw-address/confirm", withdrawAddressCtrl.Confirm)

	secured.GET("/v2/balances/:address", balanceCtrl.Balance)
	securedWithStrictRateLimit.POST("/v2/allowances", balanceCtrl.Approve)
}
