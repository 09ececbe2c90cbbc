package integration_tests

import (
	"log"
	"net/http"
	"testing"

	flow "github.com/getAlby/invoiceflow/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EventsTestSuite struct {
	TestSuite
}

func (suite *EventsTestSuite) SetupSuite() {
	svc, err := InvoiceFlowTestServiceInit(1)
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.setupEcho(svc)
}

func (suite *EventsTestSuite) events(query string) []ExpectedEvent {
	rec := suite.do(http.MethodGet, "/v2/events"+query, stranger, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	response := &ExpectedEventsResponseBody{}
	suite.decode(rec, response)
	return response.Events
}

func (suite *EventsTestSuite) TestEventOutbox() {
	assert.Empty(suite.T(), suite.events(""))

	suite.registerInvoice(1, nativeToken, 10, 60)
	suite.registerInvoice(2, nativeToken, 20, 60)
	rec := suite.do(http.MethodDelete, "/v2/invoices/1", ownerA, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	// rejected calls leave no trace
	rec = suite.do(http.MethodDelete, "/v2/invoices/1", ownerA, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	events := suite.events("")
	assert.Equal(suite.T(), 3, len(events))
	assert.Equal(suite.T(), flow.EventInvoiceRegistered, events[0].Type)
	assert.Equal(suite.T(), flow.EventInvoiceRegistered, events[1].Type)
	assert.Equal(suite.T(), flow.EventInvoiceRemoved, events[2].Type)
	assert.Equal(suite.T(), contractAddress.Hex(), events[0].Contract)
	assert.EqualValues(suite.T(), 2, events[1].Payload["invoice_id"])
	assert.EqualValues(suite.T(), 20, events[1].Payload["amount"])

	page := suite.events("?after=1&limit=1")
	assert.Equal(suite.T(), 1, len(page))
	assert.Equal(suite.T(), events[1].ID, page[0].ID)

	rec = suite.do(http.MethodGet, "/v2/events?limit=5000", stranger, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodGet, "/v2/events?after=abc", stranger, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func TestEventsTestSuite(t *testing.T) {
	suite.Run(t, new(EventsTestSuite))
}
