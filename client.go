package momo

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mokili/momo/adapters/transport"
	"github.com/mokili/momo/core"
	"github.com/mokili/momo/ports"
	"github.com/mokili/momo/service"
)

// acceptedMessage is returned on every accepted submission
const acceptedMessage = "payment request accepted; awaiting customer approval"

// TransferResult pairs an outcome with its error for the non-blocking
// transfer variant
type TransferResult struct {
	Outcome TransferOutcome
	Err     error
}

// CongoClient is the MTN Mobile Money client for Congo-Brazzaville.
// It validates transfer requests, drives the credential manager and the
// transaction service, and rewraps every failure into a single outer
// error kind per operation.
type CongoClient struct {
	config        Config
	transport     ports.Transport
	ownsTransport bool
	auth          *service.AuthService
	transactions  *service.TransactionService
	tokenStore    ports.TokenStore
	publisher     ports.EventPublisher
	logger        *zap.Logger
}

// Option customizes a CongoClient
type Option func(*CongoClient)

// WithTransport replaces the default HTTP transport. The caller stays
// responsible for closing a transport it supplied.
func WithTransport(t ports.Transport) Option {
	return func(c *CongoClient) {
		c.transport = t
		c.ownsTransport = false
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CongoClient) {
		c.logger = logger
	}
}

// WithTokenStore shares cached access tokens through an external store
func WithTokenStore(store ports.TokenStore) Option {
	return func(c *CongoClient) {
		c.tokenStore = store
	}
}

// WithEventPublisher publishes transfer lifecycle events, best-effort
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(c *CongoClient) {
		c.publisher = publisher
	}
}

// New creates a client from a validated configuration
func New(cfg Config, opts ...Option) (*CongoClient, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &CongoClient{
		config: cfg,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = transport.NewHTTPTransport(cfg.ConnectionTimeout, cfg.RequestTimeout)
		c.ownsTransport = true
	}

	settings := service.Settings{
		BaseURL:         cfg.BaseURL,
		APIUser:         cfg.APIUser,
		APIKey:          cfg.APIKey,
		SubscriptionKey: cfg.SubscriptionKey,
		Environment:     cfg.Environment,
		CallbackURL:     cfg.CallbackURL,
	}

	authOpts := []service.AuthOption{service.WithAuthLogger(c.logger.Named("auth"))}
	if c.tokenStore != nil {
		authOpts = append(authOpts, service.WithTokenStore(c.tokenStore))
	}
	c.auth = service.NewAuthService(settings, c.transport, authOpts...)
	c.transactions = service.NewTransactionService(settings, c.transport,
		service.WithTransactionLogger(c.logger.Named("transaction")))

	c.logger.Info("momo client initialized",
		zap.String("environment", cfg.Environment),
		zap.Bool("production", cfg.Production))

	return c, nil
}

// Transfer validates and submits a request to pay. On success the
// outcome is PENDING and TransactionID echoes the caller's external id.
// Every failure along the path is rewrapped into a *core.TransferError.
func (c *CongoClient) Transfer(ctx context.Context, req TransferRequest) (TransferOutcome, error) {
	outcome, err := c.transfer(ctx, req)
	if err != nil {
		c.logger.Error("transfer failed", zap.String("external_id", req.ExternalID), zap.Error(err))
		return TransferOutcome{}, &core.TransferError{Err: err}
	}

	c.publishSubmitted(ctx, outcome.TransactionID)

	return outcome, nil
}

// TransferAsync submits a request to pay without blocking the caller.
// The returned channel delivers exactly one TransferResult and is
// closed.
func (c *CongoClient) TransferAsync(ctx context.Context, req TransferRequest) <-chan TransferResult {
	results := make(chan TransferResult, 1)

	normalized, err := c.prepare(req)
	if err != nil {
		results <- TransferResult{Err: &core.TransferError{Err: err}}
		close(results)
		return results
	}

	go func() {
		defer close(results)

		token, err := c.auth.Token(ctx)
		if err != nil {
			results <- TransferResult{Err: &core.TransferError{Err: err}}
			return
		}

		result := <-c.transactions.SubmitAsync(ctx, normalized, token)
		if result.Err != nil {
			results <- TransferResult{Err: &core.TransferError{Err: result.Err}}
			return
		}

		c.publishSubmitted(ctx, result.ExternalID)

		results <- TransferResult{Outcome: pendingOutcome(result.ExternalID)}
	}()

	return results
}

// GetTransferStatus polls the state of a previous submission. Every
// failure is rewrapped into a *core.StatusQueryError.
func (c *CongoClient) GetTransferStatus(ctx context.Context, transactionID string) (TransferOutcome, error) {
	if strings.TrimSpace(transactionID) == "" {
		return TransferOutcome{}, &core.StatusQueryError{
			Err: &core.ValidationError{Violations: []string{"transaction id is required"}},
		}
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return TransferOutcome{}, &core.StatusQueryError{Err: err}
	}

	outcome, err := c.transactions.Status(ctx, transactionID, token)
	if err != nil {
		c.logger.Error("status query failed", zap.String("transaction_id", transactionID), zap.Error(err))
		return TransferOutcome{}, &core.StatusQueryError{Err: err}
	}

	if c.publisher != nil {
		if err := c.publisher.PublishStatus(ctx, outcome.TransactionID, string(outcome.Status)); err != nil {
			c.logger.Warn("failed to publish status event", zap.Error(err))
		}
	}

	return outcome, nil
}

// Capabilities lists the operation families this client supports.
// The Congo collection API only offers request to pay.
func (c *CongoClient) Capabilities() []Capability {
	return []Capability{CapabilityTransfer}
}

// Close releases the transport when the client created it
func (c *CongoClient) Close() {
	if c.ownsTransport {
		c.transport.Close()
	}
}

// transfer runs the synchronous submission pipeline
func (c *CongoClient) transfer(ctx context.Context, req TransferRequest) (TransferOutcome, error) {
	normalized, err := c.prepare(req)
	if err != nil {
		return TransferOutcome{}, err
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return TransferOutcome{}, err
	}

	externalID, err := c.transactions.Submit(ctx, normalized, token)
	if err != nil {
		return TransferOutcome{}, err
	}

	return pendingOutcome(externalID), nil
}

// prepare validates the request and normalizes the phone number
func (c *CongoClient) prepare(req TransferRequest) (TransferRequest, error) {
	if err := req.Validate(); err != nil {
		return TransferRequest{}, err
	}

	phone, err := core.NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return TransferRequest{}, &core.ValidationError{Violations: []string{err.Error()}}
	}
	req.PhoneNumber = phone

	return req, nil
}

func (c *CongoClient) publishSubmitted(ctx context.Context, externalID string) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishSubmitted(ctx, externalID); err != nil {
		c.logger.Warn("failed to publish submitted event", zap.Error(err))
	}
}

func pendingOutcome(externalID string) TransferOutcome {
	return TransferOutcome{
		TransactionID: externalID,
		Status:        StatusPending,
		Message:       acceptedMessage,
	}
}

// Compile-time capability assertions
var (
	_ Client            = (*CongoClient)(nil)
	_ TransferOperation = (*CongoClient)(nil)
)
