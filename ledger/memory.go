package ledger

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flow "github.com/getAlby/invoiceflow/common"
	"github.com/getAlby/invoiceflow/db/models"
)

type balanceKey struct {
	token  common.Address
	holder common.Address
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

type memoryState struct {
	contract        *models.Contract
	invoices        map[int64]models.Invoice
	requests        map[int64]*models.WithdrawRequest
	proposal        *models.WithdrawAddressProposal
	proposalSeq     int64
	confirmationSeq int64
	events          []models.Event
	balances        map[balanceKey]int64
	allowances      map[allowanceKey]int64
}

// Memory is an in-process Ledger. A transaction works on a copy of the state which
// replaces the live state only when the callback succeeds.
type Memory struct {
	mu    sync.Mutex
	state *memoryState
	clock func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		state: &memoryState{
			invoices:   map[int64]models.Invoice{},
			requests:   map[int64]*models.WithdrawRequest{},
			balances:   map[balanceKey]int64{},
			allowances: map[allowanceKey]int64{},
		},
		clock: time.Now,
	}
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{state: m.state.clone(), now: m.clock()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		invoices:        make(map[int64]models.Invoice, len(s.invoices)),
		requests:        make(map[int64]*models.WithdrawRequest, len(s.requests)),
		proposal:        cloneProposal(s.proposal),
		proposalSeq:     s.proposalSeq,
		confirmationSeq: s.confirmationSeq,
		events:          make([]models.Event, len(s.events)),
		balances:        make(map[balanceKey]int64, len(s.balances)),
		allowances:      make(map[allowanceKey]int64, len(s.allowances)),
	}
	if s.contract != nil {
		contract := *s.contract
		c.contract = &contract
	}
	for id, invoice := range s.invoices {
		c.invoices[id] = invoice
	}
	for id, request := range s.requests {
		c.requests[id] = cloneRequest(request)
	}
	copy(c.events, s.events)
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.allowances {
		c.allowances[k] = v
	}
	return c
}

func cloneConfirmations(confirmations []*models.Confirmation) []*models.Confirmation {
	out := make([]*models.Confirmation, len(confirmations))
	for i, c := range confirmations {
		confirmation := *c
		out[i] = &confirmation
	}
	return out
}

func cloneRequest(r *models.WithdrawRequest) *models.WithdrawRequest {
	if r == nil {
		return nil
	}
	request := *r
	request.Confirmations = cloneConfirmations(r.Confirmations)
	return &request
}

func cloneProposal(p *models.WithdrawAddressProposal) *models.WithdrawAddressProposal {
	if p == nil {
		return nil
	}
	proposal := *p
	proposal.Confirmations = cloneConfirmations(p.Confirmations)
	return &proposal
}

type memoryTx struct {
	state *memoryState
	now   time.Time
}

func (tx *memoryTx) AllowanceOf(ctx context.Context, token, owner, spender common.Address) (int64, error) {
	return tx.state.allowances[allowanceKey{token, owner, spender}], nil
}

func (tx *memoryTx) BalanceOf(ctx context.Context, token, holder common.Address) (int64, error) {
	return tx.state.balances[balanceKey{token, holder}], nil
}

func (tx *memoryTx) TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	key := allowanceKey{token, from, spender}
	allowance := tx.state.allowances[key]
	if allowance < amount {
		return ErrInsufficientAllowance
	}
	if err := tx.Transfer(ctx, token, from, to, amount); err != nil {
		return err
	}
	tx.state.allowances[key] = allowance - amount
	return nil
}

func (tx *memoryTx) Transfer(ctx context.Context, token, from, to common.Address, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	fromKey := balanceKey{token, from}
	if tx.state.balances[fromKey] < amount {
		return ErrInsufficientFunds
	}
	toKey := balanceKey{token, to}
	if from != to && tx.state.balances[toKey] > math.MaxInt64-amount {
		return ErrInvalidAmount
	}
	tx.state.balances[fromKey] -= amount
	tx.state.balances[toKey] += amount
	return nil
}

func (tx *memoryTx) Approve(ctx context.Context, token, owner, spender common.Address, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	tx.state.allowances[allowanceKey{token, owner, spender}] = amount
	return nil
}

func (tx *memoryTx) Mint(ctx context.Context, token, to common.Address, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	key := balanceKey{token, to}
	if tx.state.balances[key] > math.MaxInt64-amount {
		return ErrInvalidAmount
	}
	tx.state.balances[key] += amount
	return nil
}

func (tx *memoryTx) Contract(ctx context.Context) (*models.Contract, error) {
	if tx.state.contract == nil {
		return nil, ErrNotFound
	}
	contract := *tx.state.contract
	return &contract, nil
}

func (tx *memoryTx) SaveContract(ctx context.Context, contract *models.Contract) error {
	saved := *contract
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = tx.now
	}
	tx.state.contract = &saved
	return nil
}

func (tx *memoryTx) FindInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice, ok := tx.state.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &invoice, nil
}

func (tx *memoryTx) InsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = tx.now
	}
	tx.state.invoices[invoice.ID] = *invoice
	return nil
}

func (tx *memoryTx) DeleteInvoice(ctx context.Context, id int64) error {
	if _, ok := tx.state.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(tx.state.invoices, id)
	return nil
}

func (tx *memoryTx) InvoiceIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(tx.state.invoices))
	for id := range tx.state.invoices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (tx *memoryTx) NextWithdrawRequestID(ctx context.Context) (int64, error) {
	return int64(len(tx.state.requests)) + 1, nil
}

func (tx *memoryTx) FindWithdrawRequest(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	request, ok := tx.state.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequest(request), nil
}

func (tx *memoryTx) InsertWithdrawRequest(ctx context.Context, request *models.WithdrawRequest) error {
	if request.CreatedAt.IsZero() {
		request.CreatedAt = tx.now
	}
	for _, c := range request.Confirmations {
		tx.stampConfirmation(c, request.ID)
	}
	tx.state.requests[request.ID] = cloneRequest(request)
	return nil
}

func (tx *memoryTx) MarkWithdrawRequestExecuted(ctx context.Context, id int64, at time.Time) error {
	request, ok := tx.state.requests[id]
	if !ok {
		return ErrNotFound
	}
	request.Executed = true
	request.ExecutedAt.Time = at
	return nil
}

func (tx *memoryTx) FindWithdrawAddressProposal(ctx context.Context) (*models.WithdrawAddressProposal, error) {
	if tx.state.proposal == nil {
		return nil, ErrNotFound
	}
	return cloneProposal(tx.state.proposal), nil
}

func (tx *memoryTx) ReplaceWithdrawAddressProposal(ctx context.Context, proposal *models.WithdrawAddressProposal) error {
	tx.state.proposalSeq++
	proposal.ID = tx.state.proposalSeq
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = tx.now
	}
	for _, c := range proposal.Confirmations {
		tx.stampConfirmation(c, proposal.ID)
	}
	tx.state.proposal = cloneProposal(proposal)
	return nil
}

func (tx *memoryTx) ClearWithdrawAddressProposal(ctx context.Context) error {
	tx.state.proposal = nil
	return nil
}

func (tx *memoryTx) AddConfirmation(ctx context.Context, confirmation *models.Confirmation) error {
	tx.stampConfirmation(confirmation, confirmation.SubjectID)
	saved := *confirmation
	switch confirmation.Kind {
	case flow.ConfirmationKindWithdrawRequest:
		request, ok := tx.state.requests[confirmation.SubjectID]
		if !ok {
			return ErrNotFound
		}
		request.Confirmations = append(request.Confirmations, &saved)
	case flow.ConfirmationKindWithdrawAddress:
		if tx.state.proposal == nil || tx.state.proposal.ID != confirmation.SubjectID {
			return ErrNotFound
		}
		tx.state.proposal.Confirmations = append(tx.state.proposal.Confirmations, &saved)
	default:
		return ErrNotFound
	}
	return nil
}

func (tx *memoryTx) stampConfirmation(c *models.Confirmation, subjectID int64) {
	tx.state.confirmationSeq++
	c.ID = tx.state.confirmationSeq
	c.SubjectID = subjectID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = tx.now
	}
}

func (tx *memoryTx) InsertEvent(ctx context.Context, event *models.Event) error {
	event.ID = int64(len(tx.state.events)) + 1
	if event.CreatedAt.IsZero() {
		event.CreatedAt = tx.now
	}
	tx.state.events = append(tx.state.events, *event)
	return nil
}

func (tx *memoryTx) Events(ctx context.Context, afterID int64, limit int) ([]models.Event, error) {
	events := []models.Event{}
	for _, event := range tx.state.events {
		if event.ID <= afterID {
			continue
		}
		if limit > 0 && len(events) >= limit {
			break
		}
		events = append(events, event)
	}
	return events, nil
}
