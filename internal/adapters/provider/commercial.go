package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
)

// CommercialAPI reads exchangerate-api.com style feeds, which quote units of
// currency per one unit of base.
type CommercialAPI struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

type apiResponse struct {
	Result          string                     `json:"result"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
	ErrorType       string                     `json:"error-type"`
}

func (c *CommercialAPI) Name() string { return string(domain.SourceCommercialAPI) }

func (c *CommercialAPI) Fetch(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to parse base URL: %w", err))
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + url.PathEscape(c.apiKey) + "/latest/" + base

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to create request for currency %q: %w", base, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to execute request for currency %q: %w", base, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(fmt.Errorf("unexpected status code %d for currency %q: %s", resp.StatusCode, base, resp.Status))
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, c.fail(fmt.Errorf("failed to decode response for currency %q: %w", base, err))
	}

	if body.Result != "success" {
		return nil, c.fail(fmt.Errorf("api returned non-success result for currency %q: %s %s", base, body.Result, body.ErrorType))
	}
	if !strings.EqualFold(body.BaseCode, base) {
		return nil, c.fail(fmt.Errorf("api quoted against %q instead of %q", body.BaseCode, base))
	}

	rates := make(map[string]decimal.Decimal, len(targets))
	var missing []string
	for _, code := range targets {
		v, ok := body.ConversionRates[code]
		if !ok {
			missing = append(missing, code)
			continue
		}
		rates[code] = invert(v)
	}
	if len(missing) > 0 {
		return rates, &domain.FetchError{Provider: c.Name(), Missing: missing}
	}
	return rates, nil
}

func (c *CommercialAPI) fail(err error) error {
	return &domain.FetchError{Provider: c.Name(), Err: err}
}

// invert turns "units of currency per base" into "base per unit of currency".
// Non-positive quotes are passed through so the validator rejects them.
func invert(v decimal.Decimal) decimal.Decimal {
	if !v.IsPositive() {
		return v
	}
	return domain.One.DivRound(v, domain.RatePlaces)
}

func NewCommercialAPI(httpClient *http.Client, baseURL, apiKey string) *CommercialAPI {
	return &CommercialAPI{http: httpClient, baseURL: baseURL, apiKey: apiKey}
}
