package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db"
	"github.com/getAlby/invoiceflow/docs"
	"github.com/getAlby/invoiceflow/ledger"
	"github.com/getAlby/invoiceflow/lib/logging"
	"github.com/getAlby/invoiceflow/lib/service"
	"github.com/getAlby/invoiceflow/lib/tokens"
	"github.com/getAlby/invoiceflow/lib/transport"
	"github.com/getAlby/invoiceflow/rabbitmq"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	ddEcho "gopkg.in/DataDog/dd-trace-go.v1/contrib/labstack/echo.v4"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// @title        invoiceflow
// @version      0.1.0
// @description  Invoice registration and settlement with multi-owner approved withdrawals of the collected funds.

// @contact.name   Alby
// @contact.url    https://getalby.com
// @contact.email  hello@getalby.com

// @license.name  GNU GPLv3
// @license.url   https://www.gnu.org/licenses/gpl-3.0.en.html

// @BasePath  /

// @securitydefinitions.oauth2.password  OAuth2Password
// @tokenUrl                             /auth
// @schemes                              https http
func main() {

	c := &service.Config{}

	// Load configruation from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configrued log file
	logger := logging.Logger(c.LogFilePath)

	contract, err := c.ContractConfig()
	if err != nil {
		logger.Fatalf("Invalid contract configuration: %v", err)
	}

	//Todo: use timeout for startupcontext
	startupCtx := context.Background()
	var contractLedger ledger.Ledger
	switch c.Ledger {
	case flow.LedgerMemory:
		logger.Warn("Using the in-memory ledger, state is lost on restart")
		contractLedger = ledger.NewMemory()
	case flow.LedgerPostgres:
		// Open a DB connection based on the configured DATABASE_URI
		dbConn, err := db.Open(c)
		if err != nil {
			logger.Fatalf("Error initializing db connection: %v", err)
		}
		defer dbConn.Close()
		group, err := db.Migrate(startupCtx, dbConn)
		if err != nil {
			logger.Fatalf("Error migrating database: %v", err)
		}
		if !group.IsZero() {
			logger.Infof("Migrated database to %s", group)
		}
		contractLedger = db.NewStore(dbConn)
	default:
		logger.Fatalf("Unknown ledger %q, use %s or %s", c.Ledger, flow.LedgerMemory, flow.LedgerPostgres)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		amqpClient, err := rabbitmq.DialAMQP(c.RabbitMQUri, rabbitmq.WithAmqpLogger(logger))
		if err != nil {
			logger.Fatal(err)
		}

		defer amqpClient.Close()

		rabbitmqClient, err = rabbitmq.NewClient(amqpClient,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithEventExchange(c.RabbitMQEventExchange),
		)
		if err != nil {
			logger.Fatal(err)
		}

		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}

	var receiptMinter service.ReceiptMinter = service.NoopReceiptMinter{}
	if c.ReceiptMinterUrl != "" {
		receiptMinter = service.NewHTTPReceiptMinter(c.ReceiptMinterUrl)
	}

	svc := &service.InvoiceFlowService{
		Config:         c,
		Contract:       contract,
		Ledger:         contractLedger,
		Logger:         logger,
		EventPubSub:    service.NewPubsub(),
		ReceiptMinter:  receiptMinter,
		RabbitMQClient: rabbitmqClient,
	}
	if c.EnablePrometheus {
		svc.Metrics = service.NewMetrics(svc.EventPubSub)
		prometheus.MustRegister(svc.Metrics)
	}
	if err := svc.Init(startupCtx); err != nil {
		logger.Fatalf("Error initializing contract: %v", err)
	}
	logger.Infof("Contract %s ready: owners:%d required_approvals:%d accepted_tokens:%d", contract.Address().Hex(), len(contract.Owners()), contract.RequiredApprovals(), len(contract.AcceptedTokens()))

	//init echo server
	e := transport.InitEcho(c, logger)
	//if Datadog is configured, add datadog middleware
	if c.DatadogAgentUrl != "" {
		tracer.Start(tracer.WithAgentAddr(c.DatadogAgentUrl))
		defer tracer.Stop()
		e.Use(ddEcho.Middleware(ddEcho.WithServiceName("invoiceflow")))
	}

	logMw := transport.CreateLoggingMiddleware(logger)
	// strict rate limit for requests moving funds
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.Middleware(c.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(c.JWTSecret), strictRateLimitMiddleware, logMw)

	transport.RegisterV2Endpoints(svc, e, secured, securedWithStrictRateLimit, strictRateLimitMiddleware, tokens.AdminTokenMiddleware(c.AdminToken), logMw)

	//Swagger API spec
	docs.SwaggerInfo.Host = c.Host
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	var backgroundWg sync.WaitGroup
	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	//Start webhook subscription
	if svc.Config.WebhookUrl != "" {
		backgroundWg.Add(1)
		go func() {
			svc.StartWebhookSubscription(backGroundCtx)
			svc.Logger.Info("Webhook routine done")
			backgroundWg.Done()
		}()
	}
	//Start rabbit publisher
	if svc.RabbitMQClient != nil {
		backgroundWg.Add(1)
		go func() {
			err := svc.RabbitMQClient.StartPublishEvents(backGroundCtx,
				svc.SubscribeToEvents,
				svc.EncodeEventPayload,
			)
			if err != nil && err != context.Canceled {
				svc.Logger.Error(err)
				sentry.CaptureException(err)
			}

			svc.Logger.Info("Rabbit event publisher done")
			backgroundWg.Done()
		}()
	}

	//Start Prometheus server if necessary
	var echoPrometheus *echo.Echo
	if svc.Config.EnablePrometheus {
		echoPrometheus = transport.StartPrometheusEcho(logger, c, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	if echoPrometheus != nil {
		if err := echoPrometheus.Shutdown(ctx); err != nil {
			e.Logger.Fatal(err)
		}
	}
	//Wait for graceful shutdown of background routines
	backgroundWg.Wait()
	svc.WaitBackground()
	svc.Logger.Info("invoiceflow exiting gracefully. Goodbye.")
}
