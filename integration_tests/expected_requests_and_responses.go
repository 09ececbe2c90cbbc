package integration_tests

import "time"

type ExpectedAuthRequestBody struct {
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

type ExpectedAuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

type ExpectedSummaryResponse struct {
	Contract          string   `json:"contract"`
	Owners            []string `json:"owners"`
	AcceptedTokens    []string `json:"accepted_tokens"`
	PayoutAddress     string   `json:"payout_address"`
	RequiredApprovals int      `json:"required_approvals"`
}

type ExpectedAddInvoiceRequestBody struct {
	ID               int64  `json:"id"`
	Customer         string `json:"customer"`
	Amount           int64  `json:"amount"`
	Token            string `json:"token"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type ExpectedInvoice struct {
	ID        int64     `json:"id"`
	Customer  string    `json:"customer"`
	Token     string    `json:"token"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
	IsExpired bool      `json:"is_expired"`
}

type ExpectedInvoiceIDsResponseBody struct {
	InvoiceIDs []int64 `json:"invoice_ids"`
}

type ExpectedSettleInvoiceRequestBody struct {
	Value int64 `json:"value"`
}

type ExpectedWithdrawRequestBody struct {
	Amount int64  `json:"amount"`
	Token  string `json:"token"`
}

type ExpectedWithdrawRequest struct {
	ID                int64      `json:"id"`
	Token             string     `json:"token"`
	Amount            int64      `json:"amount"`
	Confirmations     []string   `json:"confirmations"`
	RequiredApprovals int        `json:"required_approvals"`
	Executed          bool       `json:"executed"`
	ExecutedAt        *time.Time `json:"executed_at"`
}

type ExpectedProposeWithdrawAddressRequestBody struct {
	Address string `json:"address"`
}

type ExpectedWithdrawAddressProposal struct {
	PendingAddress string   `json:"pending_address"`
	Confirmations  []string `json:"confirmations"`
}

type ExpectedMintRequestBody struct {
	Token  string `json:"token"`
	Holder string `json:"holder"`
	Amount int64  `json:"amount"`
}

type ExpectedApproveRequestBody struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

type ExpectedAllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Token     string `json:"token"`
	Allowance int64  `json:"allowance"`
}

type ExpectedTokenBalance struct {
	Token   string `json:"token"`
	Balance int64  `json:"balance"`
}

type ExpectedBalanceResponse struct {
	Address  string                 `json:"address"`
	Balances []ExpectedTokenBalance `json:"balances"`
}

type ExpectedEvent struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Contract  string                 `json:"contract"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt int64                  `json:"created_at"`
}

type ExpectedEventsResponseBody struct {
	Events []ExpectedEvent `json:"events"`
}
