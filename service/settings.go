package service

// Settings carries the provider-facing configuration shared by the
// auth and transaction services. BaseURL is expected to end with "/".
type Settings struct {
	BaseURL         string
	APIUser         string
	APIKey          string
	SubscriptionKey string
	Environment     string
	CallbackURL     string
}
