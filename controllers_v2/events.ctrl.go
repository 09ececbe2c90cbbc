package v2controllers

import (
	"net/http"

	"github.com/getAlby/invoiceflow/lib/responses"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/labstack/echo/v4"
)

const defaultEventsLimit = 100

// EventsController : EventsController struct
type EventsController struct {
	svc *service.InvoiceFlowService
}

func NewEventsController(svc *service.InvoiceFlowService) *EventsController {
	return &EventsController{svc: svc}
}

type GetEventsParams struct {
	After int64 `query:"after" validate:"gte=0"`
	Limit int   `query:"limit" validate:"gte=0,lte=1000"`
}

type GetEventsResponseBody struct {
	Events []service.EventPayload `json:"events"`
}

// GetEvents godoc
// @Summary      List events
// @Description  Returns the events emitted by committed calls with an id greater than after, oldest first
// @Accept       json
// @Produce      json
// @Tags         Events
// @Param        after  query     int  false  "Last event id already seen"
// @Param        limit  query     int  false  "Page size, 100 by default"
// @Success      200    {object}  GetEventsResponseBody
// @Failure      400    {object}  responses.ErrorResponse
// @Failure      500    {object}  responses.ErrorResponse
// @Router       /v2/events [get]
// @Security     OAuth2Password
func (controller *EventsController) GetEvents(c echo.Context) error {
	var params GetEventsParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&params); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if params.Limit == 0 {
		params.Limit = defaultEventsLimit
	}

	events, err := controller.svc.Events(c.Request().Context(), params.After, params.Limit)
	if err != nil {
		return err
	}
	response := &GetEventsResponseBody{Events: make([]service.EventPayload, len(events))}
	for i, event := range events {
		response.Events[i] = controller.svc.NewEventPayload(event)
	}
	return c.JSON(http.StatusOK, response)
}
