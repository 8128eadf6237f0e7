package momo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mokili/momo/core"
	"github.com/mokili/momo/momotest"
)

func sandboxConfig(server *momotest.Server) Config {
	return Config{
		APIUser:         "sandbox-user",
		APIKey:          "sandbox-key",
		SubscriptionKey: "sandbox-subscription",
		BaseURL:         server.URL(),
	}
}

func TestClientAgainstFakeSandbox(t *testing.T) {
	server := momotest.NewServer()
	defer server.Close()

	client, err := New(sandboxConfig(server))
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	req, err := NewTransferRequest("2500", "XAF", NewExternalID(), "069999999")
	require.NoError(t, err)
	req.PayerMessage = "Invoice 7"

	outcome, err := client.Transfer(ctx, req)
	require.NoError(t, err)
	require.Equal(t, req.ExternalID, outcome.TransactionID)
	require.Equal(t, StatusPending, outcome.Status)

	sub, ok := server.Submission(req.ExternalID)
	require.True(t, ok)
	require.Equal(t, "2500", sub.Amount)
	require.Equal(t, "242069999999", sub.Payer.PartyID)
	require.Equal(t, "MSISDN", sub.Payer.PartyIDType)
	require.Equal(t, "Invoice 7", sub.PayerMessage)

	status, err := client.GetTransferStatus(ctx, req.ExternalID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, status.Status)

	// Both calls ran on one cached token
	require.Equal(t, 1, server.TokenRequests())
}

func TestClientSurfacesDuplicateSubmission(t *testing.T) {
	server := momotest.NewServer()
	defer server.Close()

	client, err := New(sandboxConfig(server))
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	req, err := NewTransferRequest("100", "XAF", NewExternalID(), "069999999")
	require.NoError(t, err)

	_, err = client.Transfer(ctx, req)
	require.NoError(t, err)

	_, err = client.Transfer(ctx, req)
	require.ErrorIs(t, err, ErrDuplicateExternalID)
}

func TestClientReadsPresetStatus(t *testing.T) {
	server := momotest.NewServer()
	defer server.Close()

	client, err := New(sandboxConfig(server))
	require.NoError(t, err)
	defer client.Close()

	server.SetStatus(momotest.StatusRecord{
		FinancialTransactionID: "fin-55",
		ExternalID:             "ext-55",
		Amount:                 "900",
		Currency:               "XAF",
		Status:                 "SUCCESSFUL",
	})

	outcome, err := client.GetTransferStatus(context.Background(), "ext-55")
	require.NoError(t, err)
	require.Equal(t, StatusSuccessful, outcome.Status)
	require.Equal(t, "fin-55", outcome.FinancialTransactionID)
}

func TestClientRejectsBadCredentials(t *testing.T) {
	server := momotest.NewServer(momotest.WithCredentials("other-user", "other-key", "other-sub"))
	defer server.Close()

	client, err := New(sandboxConfig(server))
	require.NoError(t, err)
	defer client.Close()

	req, err := NewTransferRequest("100", "XAF", NewExternalID(), "069999999")
	require.NoError(t, err)

	_, err = client.Transfer(context.Background(), req)

	var authErr *core.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 401, authErr.StatusCode)
}
