package tokens

import (
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	jwtContextKey = "AddressJwt"
	// AddressContextKey holds the authenticated caller address as a common.Address
	AddressContextKey = "Address"
)

type jwtCustomClaims struct {
	Address string `json:"address"`

	jwt.StandardClaims
}

// Middleware : JWT middleware, sets the address the token was issued for on the context
func Middleware(secret []byte) echo.MiddlewareFunc {
	config := middleware.DefaultJWTConfig
	config.ContextKey = jwtContextKey
	config.SigningKey = secret
	config.Claims = &jwtCustomClaims{}
	config.SuccessHandler = func(c echo.Context) {
		token := c.Get(jwtContextKey).(*jwt.Token)
		claims := token.Claims.(*jwtCustomClaims)
		c.Set(AddressContextKey, common.HexToAddress(claims.Address))
	}
	config.ErrorHandlerWithContext = func(err error, c echo.Context) error {
		c.Logger().Error(err)
		return echo.NewHTTPError(http.StatusUnauthorized, responses.BadAuthError)
	}

	return middleware.JWTWithConfig(config)
}

// GenerateAccessToken : Generate Access Token for the holder of address
func GenerateAccessToken(secret []byte, expiryInSeconds int, address common.Address) (string, error) {
	claims := &jwtCustomClaims{
		Address: address.Hex(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Second * time.Duration(expiryInSeconds)).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

// parseAccessToken returns the address an access token was issued for.
func parseAccessToken(secret []byte, tokenString string) (common.Address, error) {
	claims := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return common.Address{}, err
	}
	if !token.Valid || !common.IsHexAddress(claims.Address) {
		return common.Address{}, errors.New("invalid token")
	}
	return common.HexToAddress(claims.Address), nil
}

// Caller returns the authenticated address set by Middleware.
func Caller(c echo.Context) common.Address {
	address, _ := c.Get(AddressContextKey).(common.Address)
	return address
}
