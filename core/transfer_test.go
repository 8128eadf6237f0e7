package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	req := TransferRequest{
		Amount:      "1500.50",
		Currency:    "XAF",
		ExternalID:  "ext-1",
		PhoneNumber: "069999999",
	}
	require.NoError(t, req.Validate())
}

func TestValidateCollectsViolations(t *testing.T) {
	tests := []struct {
		name string
		req  TransferRequest
		want string
	}{
		{
			"missing amount",
			TransferRequest{Currency: "XAF", ExternalID: "x", PhoneNumber: "069999999"},
			"amount is required",
		},
		{
			"non-numeric amount",
			TransferRequest{Amount: "ten", Currency: "XAF", ExternalID: "x", PhoneNumber: "069999999"},
			"not a valid decimal",
		},
		{
			"zero amount",
			TransferRequest{Amount: "0", Currency: "XAF", ExternalID: "x", PhoneNumber: "069999999"},
			"amount must be positive",
		},
		{
			"negative amount",
			TransferRequest{Amount: "-5", Currency: "XAF", ExternalID: "x", PhoneNumber: "069999999"},
			"amount must be positive",
		},
		{
			"wrong currency",
			TransferRequest{Amount: "100", Currency: "EUR", ExternalID: "x", PhoneNumber: "069999999"},
			"currency must be XAF",
		},
		{
			"blank external id",
			TransferRequest{Amount: "100", Currency: "XAF", ExternalID: "  ", PhoneNumber: "069999999"},
			"external id is required",
		},
		{
			"short phone number",
			TransferRequest{Amount: "100", Currency: "XAF", ExternalID: "x", PhoneNumber: "0699"},
			"phone number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryViolationAtOnce(t *testing.T) {
	req := TransferRequest{Amount: "-1", Currency: "USD", PhoneNumber: "12"}

	err := req.Validate()
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 4)
}

func TestValidateAcceptsLowercaseCurrency(t *testing.T) {
	req := TransferRequest{Amount: "100", Currency: "xaf", ExternalID: "x", PhoneNumber: "069999999"}
	require.NoError(t, req.Validate())
}

func TestNewTransferRequestRejectsInvalidInput(t *testing.T) {
	_, err := NewTransferRequest("100", "USD", "ext", "069999999")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	req, err := NewTransferRequest("100", "XAF", "ext", "069999999")
	require.NoError(t, err)
	require.Equal(t, "069999999", req.PhoneNumber)
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"local number gets prefixed", "069999999", "242069999999", false},
		{"prefixed number stays intact", "242069999999", "242069999999", false},
		{"local number starting with prefix digits", "242069999", "242242069999", false},
		{"surrounding spaces are tolerated", " 069999999 ", "242069999999", false},
		{"empty", "", "", true},
		{"too short", "6999999", "", true},
		{"too long", "0699999990", "", true},
		{"non-digits", "06999999a", "", true},
		{"prefixed with non-digit tail", "24206999999x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhoneNumber(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseTransferStatus(t *testing.T) {
	require.Equal(t, StatusPending, ParseTransferStatus("PENDING"))
	require.Equal(t, StatusSuccessful, ParseTransferStatus("successful"))
	require.Equal(t, StatusFailed, ParseTransferStatus("Failed"))
	require.Equal(t, StatusUnknown, ParseTransferStatus("ONGOING"))
	require.Equal(t, StatusUnknown, ParseTransferStatus(""))
}

func TestNewExternalIDIsUUID(t *testing.T) {
	id := NewExternalID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, NewExternalID())
}
