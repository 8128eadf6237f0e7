package momo

import (
	"context"

	"github.com/mokili/momo/core"
)

// Aliases re-export the core model so callers only import this package
type (
	// TransferRequest describes a request-to-pay submission
	TransferRequest = core.TransferRequest

	// TransferOutcome is the normalized result of a submission or query
	TransferOutcome = core.TransferOutcome

	// AccessToken is the token endpoint response
	AccessToken = core.AccessToken

	// TransferStatus is the lifecycle state of a transaction
	TransferStatus = core.TransferStatus
)

const (
	// StatusPending means the customer has not approved or declined yet
	StatusPending = core.StatusPending

	// StatusSuccessful means the customer approved and funds moved
	StatusSuccessful = core.StatusSuccessful

	// StatusFailed means the transaction was declined or errored
	StatusFailed = core.StatusFailed

	// StatusUnknown covers status strings this library does not recognize
	StatusUnknown = core.StatusUnknown
)

var (
	// ErrDuplicateExternalID marks a submission rejected for a reused external id
	ErrDuplicateExternalID = core.ErrDuplicateExternalID

	// ErrUnauthorized marks a 401 answer from the provider
	ErrUnauthorized = core.ErrUnauthorized

	// ErrInvalidParameters marks a 400 answer from the provider
	ErrInvalidParameters = core.ErrInvalidParameters

	// ErrProviderInternal marks a 500 answer from the provider
	ErrProviderInternal = core.ErrProviderInternal
)

// NewTransferRequest builds a validated transfer request
func NewTransferRequest(amount, currency, externalID, phoneNumber string) (TransferRequest, error) {
	return core.NewTransferRequest(amount, currency, externalID, phoneNumber)
}

// NewExternalID generates a fresh correlation id in UUID v4 form
func NewExternalID() string {
	return core.NewExternalID()
}

// Capability names one operation family a provider client supports
type Capability string

const (
	// CapabilityTransfer is the request-to-pay (collection) family
	CapabilityTransfer Capability = "transfer"

	// CapabilityCashin is the merchant-initiated deposit family
	CapabilityCashin Capability = "cashin"

	// CapabilityCashout is the merchant-initiated withdrawal family
	CapabilityCashout Capability = "cashout"
)

// TransferOperation is the request-to-pay capability
type TransferOperation interface {
	// Transfer submits a request to pay and returns a PENDING outcome
	Transfer(ctx context.Context, req TransferRequest) (TransferOutcome, error)

	// GetTransferStatus polls the state of a previous submission
	GetTransferStatus(ctx context.Context, transactionID string) (TransferOutcome, error)
}

// CashinOperation is the merchant-initiated deposit capability
type CashinOperation interface {
	Cashin(ctx context.Context, req TransferRequest) (TransferOutcome, error)
}

// CashoutOperation is the merchant-initiated withdrawal capability
type CashoutOperation interface {
	Cashout(ctx context.Context, req TransferRequest) (TransferOutcome, error)
}

// Client is the public interface of a provider client. Providers
// compose the capability interfaces they actually implement and
// advertise them through Capabilities.
type Client interface {
	TransferOperation

	// Capabilities lists the operation families this client supports
	Capabilities() []Capability

	// Close releases resources held by the client
	Close()
}
