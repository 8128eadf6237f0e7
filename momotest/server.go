// Package momotest provides an in-process fake of the MTN collection
// sandbox for tests and local development. It honors the same wire
// contract as the real API: Basic-Auth token endpoint, 202-on-accept
// submissions with duplicate detection, and status lookups.
package momotest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// StatusRecord is the JSON shape of a status lookup answer
type StatusRecord struct {
	FinancialTransactionID string `json:"financialTransactionId,omitempty"`
	ExternalID             string `json:"externalId"`
	Amount                 string `json:"amount"`
	Currency               string `json:"currency"`
	Payer                  Party  `json:"payer"`
	PayerMessage           string `json:"payerMessage,omitempty"`
	PayeeNote              string `json:"payeeNote,omitempty"`
	Status                 string `json:"status"`
	Reason                 string `json:"reason,omitempty"`
}

// Party identifies the payer on the wire
type Party struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// Submission is a recorded request-to-pay payload
type Submission struct {
	ReferenceID  string
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payer        Party  `json:"payer"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

// Server is the fake sandbox
type Server struct {
	httpServer *httptest.Server

	apiUser         string
	apiKey          string
	subscriptionKey string
	tokenLifetime   int

	mu            sync.Mutex
	tokenRequests int
	tokenSerial   int
	submissions   map[string]Submission
	statuses      map[string]StatusRecord
}

// Option customizes the fake sandbox
type Option func(*Server)

// WithCredentials sets the credentials the fake accepts
func WithCredentials(apiUser, apiKey, subscriptionKey string) Option {
	return func(s *Server) {
		s.apiUser = apiUser
		s.apiKey = apiKey
		s.subscriptionKey = subscriptionKey
	}
}

// WithTokenLifetime sets the expires_in reported by the token endpoint
func WithTokenLifetime(seconds int) Option {
	return func(s *Server) {
		s.tokenLifetime = seconds
	}
}

// NewServer starts a fake sandbox. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		apiUser:         "sandbox-user",
		apiKey:          "sandbox-key",
		subscriptionKey: "sandbox-subscription",
		tokenLifetime:   3600,
		submissions:     make(map[string]Submission),
		statuses:        make(map[string]StatusRecord),
	}

	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/collection/token/", s.handleToken)
	router.POST("/collection/v1_0/requesttopay", s.handleRequestToPay)
	router.GET("/collection/v1_0/requesttopay/:referenceId", s.handleStatus)

	s.httpServer = httptest.NewServer(router)

	return s
}

// URL returns the sandbox base URL, ending with a separator
func (s *Server) URL() string {
	return s.httpServer.URL + "/"
}

// Close shuts the sandbox down
func (s *Server) Close() {
	s.httpServer.Close()
}

// TokenRequests reports how many times the token endpoint was hit
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// Submission returns a recorded request-to-pay by reference id
func (s *Server) Submission(referenceID string) (Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[referenceID]
	return sub, ok
}

// SetStatus presets the answer for a status lookup
func (s *Server) SetStatus(record StatusRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[record.ExternalID] = record
}

func (s *Server) handleToken(c *gin.Context) {
	user, key, ok := c.Request.BasicAuth()
	if !ok || user != s.apiUser || key != s.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if c.GetHeader("Ocp-Apim-Subscription-Key") != s.subscriptionKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subscription key"})
		return
	}

	s.mu.Lock()
	s.tokenRequests++
	s.tokenSerial++
	token := fmt.Sprintf("sandbox-token-%d", s.tokenSerial)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "access_token",
		"expires_in":   s.tokenLifetime,
	})
}

func (s *Server) handleRequestToPay(c *gin.Context) {
	if !s.authorized(c) {
		return
	}

	referenceID := c.GetHeader("X-Reference-Id")
	if referenceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Reference-Id header is required"})
		return
	}

	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	sub.ReferenceID = referenceID

	s.mu.Lock()
	_, duplicate := s.submissions[referenceID]
	if !duplicate {
		s.submissions[referenceID] = sub
	}
	s.mu.Unlock()

	if duplicate {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Duplicated reference id. Creation of resource failed.",
		})
		return
	}

	c.Status(http.StatusAccepted)
}

func (s *Server) handleStatus(c *gin.Context) {
	if !s.authorized(c) {
		return
	}

	referenceID := c.Param("referenceId")

	s.mu.Lock()
	record, preset := s.statuses[referenceID]
	sub, submitted := s.submissions[referenceID]
	s.mu.Unlock()

	if preset {
		c.JSON(http.StatusOK, record)
		return
	}

	// A submission without a preset status is still pending
	if submitted {
		c.JSON(http.StatusOK, StatusRecord{
			ExternalID: sub.ExternalID,
			Amount:     sub.Amount,
			Currency:   sub.Currency,
			Payer:      sub.Payer,
			Status:     "PENDING",
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"message": "Requested resource was not found."})
}

func (s *Server) authorized(c *gin.Context) bool {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
		return false
	}

	if c.GetHeader("Ocp-Apim-Subscription-Key") != s.subscriptionKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subscription key"})
		return false
	}

	return true
}
