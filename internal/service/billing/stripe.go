package billing

import (
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// NewStripeSessions returns the checkout session client of a per-instance
// stripe API client, so the global stripe.Key is never touched. A nil
// httpClient uses the library default.
//
// Network retries are disabled: a failed call surfaces as-is.
func NewStripeSessions(secretKey string, httpClient *http.Client) (SessionCreator, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
	})

	sc := &client.API{}
	sc.Init(secretKey, &stripe.Backends{API: backend})
	return sc.CheckoutSessions, nil
}
