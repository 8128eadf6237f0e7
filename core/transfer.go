package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// CurrencyXAF is the only currency the Congo collection API accepts
	CurrencyXAF = "XAF"

	// CountryPrefix is prepended to local subscriber numbers on the wire
	CountryPrefix = "242"

	// localNumberLength is the subscriber number length without country prefix
	localNumberLength = 9
)

// TransferStatus is the lifecycle state of a request-to-pay transaction
type TransferStatus string

const (
	// StatusPending means the customer has not approved or declined yet
	StatusPending TransferStatus = "PENDING"

	// StatusSuccessful means the customer approved and funds moved
	StatusSuccessful TransferStatus = "SUCCESSFUL"

	// StatusFailed means the transaction was declined or errored
	StatusFailed TransferStatus = "FAILED"

	// StatusUnknown covers status strings this library does not recognize
	StatusUnknown TransferStatus = "UNKNOWN"
)

// ParseTransferStatus maps a provider status string onto TransferStatus
func ParseTransferStatus(s string) TransferStatus {
	switch strings.ToUpper(s) {
	case "PENDING":
		return StatusPending
	case "SUCCESSFUL":
		return StatusSuccessful
	case "FAILED":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// TransferRequest describes a request-to-pay submission.
// ExternalID is the caller-generated correlation id; it must be unique
// per transaction and doubles as the handle for status polling.
type TransferRequest struct {
	Amount       string
	Currency     string
	ExternalID   string
	PhoneNumber  string
	PayerMessage string
	PayeeNote    string
}

// NewTransferRequest builds a validated transfer request.
// It either returns a request that will pass facade validation or a
// *ValidationError listing every violation found.
func NewTransferRequest(amount, currency, externalID, phoneNumber string) (TransferRequest, error) {
	req := TransferRequest{
		Amount:      amount,
		Currency:    currency,
		ExternalID:  externalID,
		PhoneNumber: phoneNumber,
	}

	if err := req.Validate(); err != nil {
		return TransferRequest{}, err
	}

	return req, nil
}

// Validate checks the request against the provider's constraints.
// All violations are collected; the error is a *ValidationError.
func (r TransferRequest) Validate() error {
	var violations []string

	if strings.TrimSpace(r.Amount) == "" {
		violations = append(violations, "amount is required")
	} else if amount, err := decimal.NewFromString(r.Amount); err != nil {
		violations = append(violations, fmt.Sprintf("amount %q is not a valid decimal number", r.Amount))
	} else if !amount.IsPositive() {
		violations = append(violations, "amount must be positive")
	}

	if !strings.EqualFold(r.Currency, CurrencyXAF) {
		violations = append(violations, fmt.Sprintf("currency must be %s for Congo (got %q)", CurrencyXAF, r.Currency))
	}

	if strings.TrimSpace(r.ExternalID) == "" {
		violations = append(violations, "external id is required")
	}

	if _, err := NormalizePhoneNumber(r.PhoneNumber); err != nil {
		violations = append(violations, err.Error())
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}

// NormalizePhoneNumber converts a subscriber number to the MSISDN form
// the provider expects: the 242 country prefix followed by 9 digits.
// A number already carrying the prefix is accepted and never
// double-prefixed.
func NormalizePhoneNumber(phoneNumber string) (string, error) {
	number := strings.TrimSpace(phoneNumber)
	if number == "" {
		return "", fmt.Errorf("phone number is required")
	}

	// Strip the prefix only from a full MSISDN; a 9-digit local number
	// that happens to start with 242 stays intact.
	if len(number) == len(CountryPrefix)+localNumberLength && strings.HasPrefix(number, CountryPrefix) {
		number = number[len(CountryPrefix):]
	}

	if len(number) != localNumberLength {
		return "", fmt.Errorf("phone number must contain exactly %d digits after the country prefix (got %d)", localNumberLength, len(number))
	}

	for _, c := range number {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("phone number must contain only digits")
		}
	}

	return CountryPrefix + number, nil
}

// TransferOutcome is the normalized result of a submission or a status
// query. TransactionID echoes the caller's external id;
// FinancialTransactionID is the provider-issued ledger id and is only
// present once the transaction left PENDING.
type TransferOutcome struct {
	TransactionID          string
	FinancialTransactionID string
	Status                 TransferStatus
	Message                string
	FailureReason          string
}

// NewExternalID generates a fresh correlation id.
// The provider requires reference ids in UUID v4 form.
func NewExternalID() string {
	return uuid.NewString()
}
