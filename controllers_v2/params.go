package v2controllers

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

func idParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func addressParam(c echo.Context, name string) (common.Address, bool) {
	value := c.Param(name)
	if !common.IsHexAddress(value) {
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

func hexes(addresses []common.Address) []string {
	result := make([]string, len(addresses))
	for i, address := range addresses {
		result[i] = address.Hex()
	}
	return result
}
