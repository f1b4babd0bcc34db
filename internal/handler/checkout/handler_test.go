package checkout

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	billingModel "github.com/zhouzirui/scribe/backend/internal/model/billing"
	"github.com/zhouzirui/scribe/backend/internal/upstream"
)

type fakeSessions struct {
	calls int
	url   string
	err   error
}

func (f *fakeSessions) CreateCheckoutSession(context.Context) (billingModel.Session, error) {
	f.calls++
	if f.err != nil {
		return billingModel.Session{}, f.err
	}
	return billingModel.Session{URL: f.url}, nil
}

func serve(sessions SessionCreator, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(sessions, logger.NewNop()).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateCheckoutSessionReturnsURL(t *testing.T) {
	fake := &fakeSessions{url: "https://pay.example/abc"}

	resp := serve(fake, "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"url":"https://pay.example/abc"}`, resp.Body.String())
	assert.Equal(t, 1, fake.calls)
}

func TestCreateCheckoutSessionIgnoresBody(t *testing.T) {
	fake := &fakeSessions{url: "https://pay.example/abc"}

	resp := serve(fake, `{"amount":1,"currency":"eur"}`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, fake.calls)
}

func TestCreateCheckoutSessionUpstreamFailure(t *testing.T) {
	fake := &fakeSessions{err: upstream.Wrap(upstream.ProviderStripe, errors.New("No such price"))}

	resp := serve(fake, "")

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"detail":"No such price"}`, resp.Body.String())
	assert.Equal(t, 1, fake.calls, "no retry on failure")
}
