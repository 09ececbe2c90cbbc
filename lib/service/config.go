package service

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	DatabaseUri             string      `envconfig:"DATABASE_URI"`
	DatabaseMaxConns        int         `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int         `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int         `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	Ledger                  string      `envconfig:"LEDGER" default:"postgres"`
	ContractAddress         AddressItem `envconfig:"CONTRACT_ADDRESS" required:"true"`
	Owners                  AddressList `envconfig:"OWNERS" required:"true"`
	AcceptedTokens          AddressList `envconfig:"ACCEPTED_TOKENS"`
	RequiredApprovals       int         `envconfig:"REQUIRED_APPROVALS" default:"1"`
	PayoutAddress           AddressItem `envconfig:"PAYOUT_ADDRESS" required:"true"`
	SentryDSN               string      `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64     `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	DatadogAgentUrl         string      `envconfig:"DATADOG_AGENT_URL"`
	LogFilePath             string      `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte      `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenExpiry    int         `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"` // in seconds, default 2 days
	AdminToken              string      `envconfig:"ADMIN_TOKEN"`
	Host                    string      `envconfig:"HOST" default:"localhost:3000"`
	Port                    int         `envconfig:"PORT" default:"3000"`
	DefaultRateLimit        int         `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit         int         `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int         `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus        bool        `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort          int         `envconfig:"PROMETHEUS_PORT" default:"9092"`
	WebhookUrl              string      `envconfig:"WEBHOOK_URL"`
	ReceiptMinterUrl        string      `envconfig:"RECEIPT_MINTER_URL"`
	RabbitMQUri             string      `envconfig:"RABBITMQ_URI"`
	RabbitMQEventExchange   string      `envconfig:"RABBITMQ_EVENT_EXCHANGE" default:"invoiceflow_events"`
}

// envconfig splits slices on commas but leaves element parsing to the target type,
// addresses are decoded here so a malformed hex string fails at startup

type AddressItem common.Address

func (a *AddressItem) Decode(value string) error {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return fmt.Errorf("invalid address: %q", value)
	}
	*a = AddressItem(common.HexToAddress(value))
	return nil
}

func (a AddressItem) Address() common.Address {
	return common.Address(a)
}

type AddressList []common.Address

func (al *AddressList) Decode(value string) error {
	list := AddressList{}
	for _, item := range strings.Split(value, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		var addr AddressItem
		if err := addr.Decode(item); err != nil {
			return err
		}
		list = append(list, addr.Address())
	}
	*al = list
	return nil
}

// ContractConfig builds the immutable contract configuration from the environment.
func (c *Config) ContractConfig() (*ContractConfig, error) {
	return NewContractConfig(c.ContractAddress.Address(), c.Owners, c.AcceptedTokens, c.RequiredApprovals, c.PayoutAddress.Address())
}
