package common

const (
	EventInvoiceRegistered              = "InvoiceRegistered"
	EventInvoiceRemoved                 = "InvoiceRemoved"
	EventInvoicePaid                    = "InvoicePaid"
	EventWithdrawRequestRegistered      = "WithdrawRequestRegistered"
	EventWithdrawRequestApproved        = "WithdrawRequestApproved"
	EventWithdrawRequestExecuted        = "WithdrawRequestExecuted"
	EventWithdrawAddressChangeRequested = "WithdrawAddressChangeRequested"
	EventWithdrawAddressChangeApproved  = "WithdrawAddressChangeApproved"
	EventWithdrawAddressChanged         = "WithdrawAddressChanged"

	ConfirmationKindWithdrawRequest = "withdraw_request"
	ConfirmationKindWithdrawAddress = "withdraw_address"

	AccountTypeHolder   = "holder"
	AccountTypeIssuance = "issuance"

	EntryTypeTransfer = "transfer"
	EntryTypeMint     = "mint"

	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)
