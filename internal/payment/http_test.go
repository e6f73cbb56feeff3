package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newProcessor(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAuthorizerApproved(t *testing.T) {
	var (
		got    chargeRequest
		method string
	)
	srv := newProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ch_123"}`))
	})

	auth := NewHTTPAuthorizer(srv.URL, time.Second)
	res, err := auth.Authorize(context.Background(), "4242424242424242", decimal.RequireFromString("15.50"))
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "ch_123", res.Reference)
	require.Equal(t, StatusApproved, res.Status)
	require.Equal(t, "4242424242424242", got.CreditCard)
	require.True(t, got.Amount.Equal(decimal.RequireFromString("15.5")))
}

func TestHTTPAuthorizerDeclined(t *testing.T) {
	srv := newProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"amount too small"}`))
	})

	_, err := NewHTTPAuthorizer(srv.URL, time.Second).Authorize(context.Background(), "4242", decimal.NewFromInt(5))
	require.ErrorIs(t, err, ErrDeclined)

	var decline *DeclineError
	require.True(t, errors.As(err, &decline))
	require.Equal(t, "amount too small", decline.Reason)
}

func TestHTTPAuthorizerServerErrorIsTechnical(t *testing.T) {
	srv := newProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewHTTPAuthorizer(srv.URL, time.Second).Authorize(context.Background(), "4242", decimal.NewFromInt(50))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDeclined))
}

func TestHTTPAuthorizerTimeout(t *testing.T) {
	srv := newProcessor(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	_, err := NewHTTPAuthorizer(srv.URL, 20*time.Millisecond).Authorize(context.Background(), "4242", decimal.NewFromInt(50))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDeclined))
}
