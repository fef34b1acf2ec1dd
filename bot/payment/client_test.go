package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/binarybrigade/printbot/core/config"
	"github.com/binarybrigade/printbot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&coreconfig.Config{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestCreateLink(t *testing.T) {
	var gotKey, gotUser, gotPass string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotence-Key")
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pay-123",
			"status": "pending",
			"confirmation": {"type": "redirect", "confirmation_url": "https://pay.example/confirm/pay-123"}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		ShopID:    "shop-1",
		SecretKey: "secret",
		APIURL:    srv.URL,
		ReturnURL: "https://bot.example/paid",
		Currency:  "RUB",
	}, srv.Client())

	link, err := client.CreateLink(context.Background(), decimal.RequireFromString("699.90"), "order 12")
	require.NoError(t, err)
	assert.Equal(t, "pay-123", link.PaymentID)
	assert.Equal(t, "https://pay.example/confirm/pay-123", link.URL)

	assert.NotEmpty(t, gotKey)
	assert.Equal(t, "shop-1", gotUser)
	assert.Equal(t, "secret", gotPass)

	amount := gotBody["amount"].(map[string]any)
	assert.Equal(t, "699.90", amount["value"])
	assert.Equal(t, "RUB", amount["currency"])
	confirmation := gotBody["confirmation"].(map[string]any)
	assert.Equal(t, "redirect", confirmation["type"])
	assert.Equal(t, "https://bot.example/paid", confirmation["return_url"])
	assert.Equal(t, true, gotBody["capture"])
}

func TestCreateLinkFreshIdempotenceKeys(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotence-Key"))
		_, _ = w.Write([]byte(`{"id": "p", "confirmation": {"confirmation_url": "https://pay.example/x"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ShopID: "s", SecretKey: "k", APIURL: srv.URL, Currency: "RUB"}, srv.Client())

	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), "a")
	require.NoError(t, err)
	_, err = client.CreateLink(context.Background(), decimal.NewFromInt(10), "a")
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestCreateLinkProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "code": "invalid_credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ShopID: "s", SecretKey: "bad", APIURL: srv.URL, Currency: "RUB"}, srv.Client())

	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateLinkMissingConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "p", "confirmation": {"type": "redirect"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ShopID: "s", SecretKey: "k", APIURL: srv.URL, Currency: "RUB"}, srv.Client())

	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no confirmation url")
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient(Config{}, nil).Enabled())
	assert.True(t, NewClient(Config{ShopID: "s"}, nil).Enabled())
}
