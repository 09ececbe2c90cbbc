package service

type ErrorKind string

const (
	KindAuthorization ErrorKind = "authorization"
	KindValidation    ErrorKind = "validation"
	KindState         ErrorKind = "state"
	KindFunds         ErrorKind = "funds"
)

// FlowError is a rejected contract call. Nothing of the call has been applied.
type FlowError struct {
	Kind ErrorKind
	Code string
}

func (e *FlowError) Error() string {
	return e.Code
}

var (
	ErrUnauthorized = &FlowError{Kind: KindAuthorization, Code: "UNAUTHORIZED"}

	ErrInvalidAmount          = &FlowError{Kind: KindValidation, Code: "INVALID_AMOUNT"}
	ErrInvalidAddress         = &FlowError{Kind: KindValidation, Code: "INVALID_ADDRESS"}
	ErrInvalidInvoiceID       = &FlowError{Kind: KindValidation, Code: "INVALID_INVOICE_ID"}
	ErrInvalidExpirationValue = &FlowError{Kind: KindValidation, Code: "INVALID_EXPIRATION_VALUE"}
	ErrInvalidApprovalsNumber = &FlowError{Kind: KindValidation, Code: "INVALID_APPROVALS_NUMBER"}
	ErrInvalidTokenAddress    = &FlowError{Kind: KindValidation, Code: "INVALID_TOKEN_ADDRESS"}

	ErrInvoiceAlreadyExist     = &FlowError{Kind: KindState, Code: "INVOICE_ALREADY_EXIST"}
	ErrInvoiceNotFound         = &FlowError{Kind: KindState, Code: "INVOICE_NOT_FOUND"}
	ErrInvoiceExpired          = &FlowError{Kind: KindState, Code: "INVOICE_EXPIRED"}
	ErrAlreadyConfirmed        = &FlowError{Kind: KindState, Code: "ALREADY_CONFIRMED"}
	ErrWithdrawAlreadyExecuted = &FlowError{Kind: KindState, Code: "WITHDRAW_ALREADY_EXECUTED"}
	ErrWithdrawRequestNotFound = &FlowError{Kind: KindState, Code: "WITHDRAW_REQUEST_NOT_FOUND"}
	ErrNewAddressMustBeSet     = &FlowError{Kind: KindState, Code: "NEW_ADDRESS_MUST_BE_SET"}

	ErrTokenNotSupported      = &FlowError{Kind: KindFunds, Code: "ERC20_TOKEN_NOT_SUPPORTED"}
	ErrAllowanceNotSufficient = &FlowError{Kind: KindFunds, Code: "ALLOWANCE_NOT_SUFFICIENT"}
	ErrInsufficientBalance    = &FlowError{Kind: KindFunds, Code: "INSUFFICIENT_BALANCE"}
	ErrSentAmountNotMatch     = &FlowError{Kind: KindFunds, Code: "SENT_AMOUNT_NOT_MATCH"}
)
