package v2controllers

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/security"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/labstack/echo/v4"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.InvoiceFlowService
}

func NewAuthController(svc *service.InvoiceFlowService) *AuthController {
	return &AuthController{svc: svc}
}

type AuthRequestBody struct {
	Address   string `json:"address" validate:"required,hex_address"`
	Timestamp int64  `json:"timestamp" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Auth godoc
// @Summary      Authenticate
// @Description  Exchanges a personal_sign signature of the login message for an access token
// @Accept       json
// @Produce      json
// @Tags         Auth
// @Param        AuthRequestBody  body      AuthRequestBody  true  "Signed login message"
// @Success      200              {object}  AuthResponseBody
// @Failure      400              {object}  responses.ErrorResponse
// @Failure      401              {object}  responses.ErrorResponse
// @Router       /auth [post]
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid auth request body error: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	address := common.HexToAddress(body.Address)
	if err := security.VerifyLogin(address, body.Timestamp, body.Signature, time.Now()); err != nil {
		c.Logger().Errorf("Login failed for address:%s error: %v", address.Hex(), err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	accessToken, err := tokens.GenerateAccessToken(controller.svc.Config.JWTSecret, controller.svc.Config.JWTAccessTokenExpiry, address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &AuthResponseBody{AccessToken: accessToken})
}
