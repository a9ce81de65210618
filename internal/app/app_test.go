package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"multicurrency/internal/api"
	"multicurrency/internal/config"
	"multicurrency/internal/rate/handler"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Logging: config.Logging{Level: "error"},
		Currency: config.Currency{
			BaseCurrency:              "USD",
			RateSource:                "manual",
			UpdateFrequency:           "daily",
			RoundToDecimals:           2,
			ShowBothCurrencies:        true,
			AllowMultiCurrencyPayment: true,
			MaxDeviationPercent:       "10",
		},
		Cache:   config.Cache{MaxItems: 100, TTLSeconds: 60},
		Storage: config.Storage{Driver: config.StorageMemory},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := build(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	h := handler.NewHandler(handler.Deps{
		Scheduler:  c.scheduler,
		Rates:      c.store,
		Converter:  c.engine,
		Payments:   c.recorder,
		Currencies: c.service,
	})
	srv := httptest.NewServer(api.NewRouter(h, c.registry))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestBuild_RegistersBaseCurrency(t *testing.T) {
	c, err := build(context.Background(), testConfig())
	require.NoError(t, err)
	defer c.Close()

	usd, err := c.service.Get(context.Background(), "USD")
	require.NoError(t, err)
	require.True(t, usd.IsActive)
	require.Equal(t, "1", usd.Rate.String())
}

func TestBuild_InvalidDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Currency.RateSource = "ftp"
	_, err := build(context.Background(), cfg)
	require.Error(t, err)
}

func TestApp_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	var created handler.CurrencyResponse
	status := call(t, srv, http.MethodPost, "/api/v1/currencies",
		`{"code":"EUR","name":"Euro","symbol":"€","rate":"1.1","decimal_places":2,"sort_order":1}`, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "1.1", created.Rate)

	var conv handler.ConvertResponse
	status = call(t, srv, http.MethodGet, "/api/v1/convert?from=EUR&to=USD&amount=100", "", &conv)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "110", conv.Result)
	require.Equal(t, "1.1", conv.Rate)

	var payment handler.PaymentResponse
	status = call(t, srv, http.MethodPost, "/api/v1/payments", `{"sale_id":"S1","currency":"EUR","amount":"10"}`, &payment)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "11", payment.BaseAmount)

	var reversal handler.PaymentResponse
	status = call(t, srv, http.MethodPost, "/api/v1/payments/"+payment.ID+"/reverse", "", &reversal)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "-11", reversal.BaseAmount)
	require.Equal(t, payment.ID, reversal.ReversalOf)

	var payments []handler.PaymentResponse
	status = call(t, srv, http.MethodGet, "/api/v1/payments?sale_id=S1", "", &payments)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, payments, 2)

	status = call(t, srv, http.MethodPost, "/api/v1/rates/updates", "", nil)
	require.Equal(t, http.StatusConflict, status)

	var entry handler.HistoryEntryResponse
	status = call(t, srv, http.MethodPut, "/api/v1/currencies/EUR/rate", `{"rate":"1.15"}`, &entry)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "1.1", entry.OldRate)
	require.Equal(t, "1.15", entry.NewRate)

	var history handler.HistoryResponse
	status = call(t, srv, http.MethodGet, "/api/v1/history?currency=EUR", "", &history)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, history.Total)

	status = call(t, srv, http.MethodDelete, "/api/v1/currencies/EUR", "", nil)
	require.Equal(t, http.StatusConflict, status)
}

func TestApp_OperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status := call(t, srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "go_goroutines")

	var settings handler.SettingsResponse
	status = call(t, srv, http.MethodGet, "/api/v1/settings", "", &settings)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "manual", settings.RateSource)
}
