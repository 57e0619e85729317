package entsoe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devskill-org/dcdispatch/utils"
)

// APIClient fetches and decodes ENTSO-E day-ahead market documents over HTTP.
type APIClient struct {
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

// NewAPIClient creates an ENTSO-E API client with default settings.
func NewAPIClient() *APIClient {
	return &APIClient{
		httpClient: &http.Client{},
		userAgent:  "entsoe-go-client/1.0",
	}
}

// SetUserAgent overrides the default User-Agent header.
func (c *APIClient) SetUserAgent(userAgent string) {
	c.userAgent = userAgent
}

// SetHeader attaches an extra header sent with every subsequent request.
func (c *APIClient) SetHeader(key, value string) {
	if c.headers == nil {
		c.headers = make(map[string]string)
	}
	c.headers[key] = value
}

// DownloadPublicationMarketData fetches and decodes a single
// Publication_MarketDocument from apiURL.
func (c *APIClient) DownloadPublicationMarketData(ctx context.Context, apiURL string) (*PublicationMarketDocument, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("entsoe: API URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("entsoe: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entsoe: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entsoe: HTTP request failed with status %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := DecodeEnergyPricesXML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("entsoe: decode XML response: %w", err)
	}
	return doc, nil
}

// FetchDayAheadPrices fetches today's publication and, once past 13:00 local
// time, tomorrow's as well, per ENTSO-E's own publication schedule, merging
// them into a single document covering both days.
func FetchDayAheadPrices(ctx context.Context, securityToken, urlFormat string, location *time.Location) (*PublicationMarketDocument, error) {
	now := time.Now().In(location)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := NewAPIClient()
	doc, err := client.DownloadPublicationMarketData(ctx, buildPublicationMarketDataURL(securityToken, urlFormat, now))
	if err != nil {
		return nil, err
	}

	if now.Hour() >= 13 {
		tomorrow := now.AddDate(0, 0, 1)
		docNextDay, err := client.DownloadPublicationMarketData(ctx, buildPublicationMarketDataURL(securityToken, urlFormat, tomorrow))
		if err != nil {
			return nil, err
		}
		doc = mergePublicationMarketData(doc, docNextDay)
	}

	return doc, nil
}

// FetchScenarioPrices downloads the current day-ahead price document and
// samples it straight into a scenario.Scenario-ready Price series, gluing
// this client directly to the dispatch planner's input format instead of
// handing the caller a raw document to convert itself.
func FetchScenarioPrices(ctx context.Context, securityToken, urlFormat string, location *time.Location, start time.Time, horizon int, stepHours float64) ([]float64, error) {
	doc, err := FetchDayAheadPrices(ctx, securityToken, urlFormat, location)
	if err != nil {
		return nil, fmt.Errorf("entsoe: fetch scenario prices: %w", err)
	}
	return PriceSeries(doc, start, horizon, stepHours)
}

// buildPublicationMarketDataURL builds the ENTSO-E query URL spanning the
// calendar day that contains now, in now's own location, with both bounds
// rendered in UTC.
func buildPublicationMarketDataURL(securityToken string, urlFormat string, now time.Time) string {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	periodStart := utils.GetUTCString(start)
	periodEnd := utils.GetUTCString(start.AddDate(0, 0, 1))

	return fmt.Sprintf(urlFormat, periodStart, periodEnd, securityToken)
}

// mergePublicationMarketData merges two PublicationMarketDocuments by
// combining their TimeSeries and extending the covered period. Leaves both
// arguments unmodified.
func mergePublicationMarketData(first *PublicationMarketDocument, second *PublicationMarketDocument) *PublicationMarketDocument {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}

	merged := *first
	merged.TimeSeries = append(append([]TimeSeries{}, first.TimeSeries...), second.TimeSeries...)

	if len(second.TimeSeries) > 0 && second.PeriodTimeInterval.End.After(merged.PeriodTimeInterval.End) {
		merged.PeriodTimeInterval.End = second.PeriodTimeInterval.End
	}

	return &merged
}
