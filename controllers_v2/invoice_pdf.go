package v2controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"
)

// PDF godoc
// @Summary      Invoice document
// @Description  Printable PDF of an invoice including the QR code of its payment URI
// @Produce      application/pdf
// @Tags         Invoice
// @Param        id   path  int  true  "Invoice id"
// @Success      200
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id}/pdf [get]
// @Security     OAuth2Password
func (controller *InvoiceController) PDF(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return responses.RespondWithError(c, err)
	}
	doc, err := RenderInvoicePDF(controller.svc.Contract.Address(), invoice, time.Now())
	if err != nil {
		c.Logger().Errorf("Failed to render invoice pdf: id:%d error:%v", id, err)
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=invoice-%d.pdf", invoice.ID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

func RenderInvoicePDF(contract common.Address, invoice *models.Invoice, now time.Time) ([]byte, error) {
	uri := PaymentURI(contract, invoice)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	token := invoice.Token
	if common.HexToAddress(invoice.Token) == ledger.NativeToken {
		token = "native"
	}
	status := "open"
	if invoice.IsExpired(now) {
		status = "expired"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %d", invoice.ID), false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Invoice %d", invoice.ID))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Contract", contract.Hex()},
		{"Customer", invoice.Customer},
		{"Token", token},
		{"Amount", fmt.Sprintf("%d", invoice.Amount)},
		{"Expires at", invoice.ExpiresAt.UTC().Format(time.RFC3339)},
		{"Status", status},
	}
	for _, row := range rows {
		pdf.CellFormat(30, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	imageName := fmt.Sprintf("qr-%d", invoice.ID)
	options := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(imageName, options, bytes.NewReader(png))
	pdf.ImageOptions(imageName, pdf.GetX(), pdf.GetY(), 60, 60, true, options, 0, "")
	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(0, 5, uri, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
