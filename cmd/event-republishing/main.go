package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/getAlby/invoiceflow/db"
	"github.com/getAlby/invoiceflow/db/models"
	"github.com/getAlby/invoiceflow/lib/logging"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/rabbitmq"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const pageSize = 500

// replays the event outbox to rabbitmq, for consumers that missed events
// while the publisher was down
func main() {

	c := &service.Config{}
	// Load configruation from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		fmt.Printf("Error loading environment variables: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Logger(c.LogFilePath)
	startID, endID, err := loadStartAndEndIdFromEnv()
	if err != nil {
		logger.Fatalf("Could not load start and end id from env %v", err)
	}
	contract, err := c.ContractConfig()
	if err != nil {
		logger.Fatalf("Invalid contract configuration: %v", err)
	}
	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}
	defer dbConn.Close()

	svc := &service.InvoiceFlowService{
		Config:   c,
		Contract: contract,
		Ledger:   db.NewStore(dbConn),
		Logger:   logger,
	}
	ctx := context.Background()

	result := []models.Event{}
	for after := startID; ; {
		page, err := svc.Events(ctx, after, pageSize)
		if err != nil {
			logger.Fatal(err)
		}
		for _, event := range page {
			if endID > 0 && event.ID > endID {
				break
			}
			result = append(result, event)
		}
		if len(page) < pageSize || (endID > 0 && page[len(page)-1].ID >= endID) {
			break
		}
		after = page[len(page)-1].ID
	}
	logger.Infof("Found %d events", len(result))

	if os.Getenv("DRY_RUN") == "true" {
		for _, event := range result {
			logger.Infof("Would publish event id:%d type:%s", event.ID, event.Type)
		}
		return
	}

	amqpClient, err := rabbitmq.DialAMQP(c.RabbitMQUri, rabbitmq.WithAmqpLogger(logger))
	if err != nil {
		logger.Fatal(err)
	}
	defer amqpClient.Close()

	rabbitmqClient, err := rabbitmq.NewClient(amqpClient,
		rabbitmq.WithLogger(logger),
		rabbitmq.WithEventExchange(c.RabbitMQEventExchange),
	)
	if err != nil {
		logger.Fatal(err)
	}

	// the publisher stops once the closed channel is drained
	replay := func() (chan models.Event, func(), error) {
		events := make(chan models.Event, len(result))
		for _, event := range result {
			events <- event
		}
		close(events)
		return events, func() {}, nil
	}
	err = rabbitmqClient.StartPublishEvents(ctx, replay, svc.EncodeEventPayload)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("Published %d events", len(result))
}

// START_ID is exclusive, END_ID inclusive and optional
func loadStartAndEndIdFromEnv() (start, end int64, err error) {
	start, err = strconv.ParseInt(os.Getenv("START_ID"), 10, 64)
	if err != nil {
		return
	}
	if os.Getenv("END_ID") == "" {
		return start, 0, nil
	}
	end, err = strconv.ParseInt(os.Getenv("END_ID"), 10, 64)
	return
}
