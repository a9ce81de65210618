package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
)

const DefaultCentralBankURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// CentralBank reads the ECB daily reference rates. The feed quotes units of
// currency per one euro, so any base can be derived by cross rate.
type CentralBank struct {
	http *http.Client
	url  string
}

type ecbEnvelope struct {
	Cube struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string `xml:"currency,attr"`
				Rate     string `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

func (c *CentralBank) Name() string { return string(domain.SourceCentralBank) }

func (c *CentralBank) Fetch(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	perEUR, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, &domain.FetchError{Provider: c.Name(), Err: err}
	}

	baseRate, ok := perEUR[base]
	if !ok {
		return nil, &domain.FetchError{Provider: c.Name(), Err: fmt.Errorf("base currency %q is not quoted", base)}
	}
	if !baseRate.IsPositive() {
		return nil, &domain.FetchError{Provider: c.Name(), Err: fmt.Errorf("base currency %q has non-positive quote %s", base, baseRate)}
	}

	rates := make(map[string]decimal.Decimal, len(targets))
	var missing []string
	for _, code := range targets {
		quote, ok := perEUR[code]
		if !ok {
			missing = append(missing, code)
			continue
		}
		if !quote.IsPositive() {
			// passed through so the validator records the rejection
			rates[code] = quote
			continue
		}
		rates[code] = baseRate.DivRound(quote, domain.RatePlaces)
	}
	if len(missing) > 0 {
		return rates, &domain.FetchError{Provider: c.Name(), Missing: missing}
	}
	return rates, nil
}

// fetchFeed returns the latest day of the feed keyed by currency, EUR included.
func (c *CentralBank) fetchFeed(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, resp.Status)
	}

	var env ecbEnvelope
	if err = xml.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	if len(env.Cube.Days) == 0 || len(env.Cube.Days[0].Rates) == 0 {
		return nil, fmt.Errorf("feed contains no rates")
	}

	day := env.Cube.Days[0]
	perEUR := make(map[string]decimal.Decimal, len(day.Rates)+1)
	perEUR["EUR"] = domain.One
	for _, r := range day.Rates {
		v, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return nil, fmt.Errorf("malformed rate %q for %s on %s", r.Rate, r.Currency, day.Time)
		}
		perEUR[r.Currency] = v
	}
	return perEUR, nil
}

func NewCentralBank(httpClient *http.Client, url string) *CentralBank {
	if url == "" {
		url = DefaultCentralBankURL
	}
	return &CentralBank{http: httpClient, url: url}
}
