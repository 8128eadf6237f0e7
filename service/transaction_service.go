package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mokili/momo/core"
	"github.com/mokili/momo/ports"
)

const (
	requestToPayEndpoint       = "collection/v1_0/requesttopay"
	requestToPayStatusEndpoint = "collection/v1_0/requesttopay/"

	// partyIDTypeMSISDN identifies the payer by mobile subscriber number
	partyIDTypeMSISDN = "MSISDN"
)

// requestToPayPayload is the provider's submission JSON shape
type requestToPayPayload struct {
	Amount       string     `json:"amount"`
	Currency     string     `json:"currency"`
	ExternalID   string     `json:"externalId"`
	Payer        payerParty `json:"payer"`
	PayerMessage string     `json:"payerMessage"`
	PayeeNote    string     `json:"payeeNote"`
}

type payerParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// statusRecord is the provider's status JSON shape
type statusRecord struct {
	FinancialTransactionID string     `json:"financialTransactionId"`
	ExternalID             string     `json:"externalId"`
	Amount                 string     `json:"amount"`
	Currency               string     `json:"currency"`
	Payer                  payerParty `json:"payer"`
	PayerMessage           string     `json:"payerMessage"`
	PayeeNote              string     `json:"payeeNote"`
	Status                 string     `json:"status"`
	Reason                 string     `json:"reason,omitempty"`
}

// SubmitResult pairs a submission outcome with its error for the
// non-blocking variant
type SubmitResult struct {
	ExternalID string
	Err        error
}

// TransactionService builds provider-shaped payloads, executes them
// through the transport and maps HTTP outcomes onto the error taxonomy.
// It does not retry: a duplicate external id surfaces as a conflict.
type TransactionService struct {
	settings  Settings
	transport ports.Transport
	logger    *zap.Logger
}

// TransactionOption customizes a TransactionService
type TransactionOption func(*TransactionService)

// WithTransactionLogger sets the service logger
func WithTransactionLogger(logger *zap.Logger) TransactionOption {
	return func(s *TransactionService) {
		s.logger = logger
	}
}

// NewTransactionService creates a new transaction service
func NewTransactionService(settings Settings, transport ports.Transport, opts ...TransactionOption) *TransactionService {
	s := &TransactionService{
		settings:  settings,
		transport: transport,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit initiates a request to pay and blocks until the provider
// acknowledges it. The provider answers 202 with no body on success and
// issues no transaction id of its own, so the caller's external id is
// returned as the polling handle.
func (s *TransactionService) Submit(ctx context.Context, req core.TransferRequest, token core.AccessToken) (string, error) {
	wireReq, err := s.buildSubmitRequest(req, token)
	if err != nil {
		return "", err
	}

	resp, err := s.transport.Execute(ctx, wireReq)
	if err != nil {
		return "", err
	}

	return s.mapSubmitResponse(req.ExternalID, resp)
}

// SubmitAsync initiates a request to pay without blocking the caller.
// The returned channel delivers exactly one SubmitResult and is closed.
func (s *TransactionService) SubmitAsync(ctx context.Context, req core.TransferRequest, token core.AccessToken) <-chan SubmitResult {
	results := make(chan SubmitResult, 1)

	wireReq, err := s.buildSubmitRequest(req, token)
	if err != nil {
		results <- SubmitResult{Err: err}
		close(results)
		return results
	}

	go func() {
		defer close(results)

		result := <-s.transport.ExecuteAsync(ctx, wireReq)
		if result.Err != nil {
			results <- SubmitResult{Err: result.Err}
			return
		}

		externalID, err := s.mapSubmitResponse(req.ExternalID, result.Response)
		results <- SubmitResult{ExternalID: externalID, Err: err}
	}()

	return results
}

// Status queries the state of a previously submitted request to pay
func (s *TransactionService) Status(ctx context.Context, externalID string, token core.AccessToken) (core.TransferOutcome, error) {
	s.logger.Debug("querying transaction status", zap.String("external_id", externalID))

	resp, err := s.transport.Execute(ctx, ports.Request{
		Method: http.MethodGet,
		URL:    s.settings.BaseURL + requestToPayStatusEndpoint + externalID,
		Headers: map[string]string{
			"Authorization":             "Bearer " + token.AccessToken,
			"X-Target-Environment":      s.settings.Environment,
			"Ocp-Apim-Subscription-Key": s.settings.SubscriptionKey,
			"Content-Type":              "application/json",
		},
	})
	if err != nil {
		return core.TransferOutcome{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("status query rejected",
			zap.String("external_id", externalID),
			zap.Int("status", resp.StatusCode))
		return core.TransferOutcome{}, &core.ProviderError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var record statusRecord
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return core.TransferOutcome{}, fmt.Errorf("failed to decode status response: %w", err)
	}

	return s.outcomeFromRecord(externalID, record), nil
}

func (s *TransactionService) buildSubmitRequest(req core.TransferRequest, token core.AccessToken) (ports.Request, error) {
	payload := requestToPayPayload{
		Amount:     req.Amount,
		Currency:   req.Currency,
		ExternalID: req.ExternalID,
		Payer: payerParty{
			PartyIDType: partyIDTypeMSISDN,
			PartyID:     req.PhoneNumber,
		},
		PayerMessage: req.PayerMessage,
		PayeeNote:    req.PayeeNote,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.Request{}, fmt.Errorf("failed to serialize request to pay: %w", err)
	}

	headers := map[string]string{
		"Authorization":             "Bearer " + token.AccessToken,
		"X-Reference-Id":            req.ExternalID,
		"X-Target-Environment":      s.settings.Environment,
		"Ocp-Apim-Subscription-Key": s.settings.SubscriptionKey,
		"Content-Type":              "application/json",
	}
	if s.settings.CallbackURL != "" {
		headers["X-Callback-Url"] = s.settings.CallbackURL
	}

	return ports.Request{
		Method:  http.MethodPost,
		URL:     s.settings.BaseURL + requestToPayEndpoint,
		Headers: headers,
		Body:    body,
	}, nil
}

// mapSubmitResponse interprets the submission answer. Exactly 202 means
// accepted; everything else goes through the error taxonomy.
func (s *TransactionService) mapSubmitResponse(externalID string, resp ports.Response) (string, error) {
	if resp.StatusCode == http.StatusAccepted {
		s.logger.Debug("request to pay accepted", zap.String("external_id", externalID))
		return externalID, nil
	}

	s.logger.Error("request to pay rejected",
		zap.String("external_id", externalID),
		zap.Int("status", resp.StatusCode))

	return "", &core.ProviderError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

// outcomeFromRecord normalizes the provider status record.
// TransactionID deliberately echoes the caller's external id (the
// polling handle); the provider ledger id is exposed separately as
// FinancialTransactionID.
func (s *TransactionService) outcomeFromRecord(externalID string, record statusRecord) core.TransferOutcome {
	transactionID := record.ExternalID
	if transactionID == "" {
		transactionID = externalID
	}

	status := core.ParseTransferStatus(record.Status)

	outcome := core.TransferOutcome{
		TransactionID:          transactionID,
		FinancialTransactionID: record.FinancialTransactionID,
		Status:                 status,
		Message:                statusMessage(status, record.Status),
	}

	if status == core.StatusFailed {
		outcome.FailureReason = record.Reason
	}

	return outcome
}

func statusMessage(status core.TransferStatus, raw string) string {
	switch status {
	case core.StatusPending:
		return "payment request pending customer approval"
	case core.StatusSuccessful:
		return "payment completed"
	case core.StatusFailed:
		return "payment failed"
	default:
		return fmt.Sprintf("unrecognized provider status %q", raw)
	}
}
