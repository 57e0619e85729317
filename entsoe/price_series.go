package entsoe

import (
	"fmt"
	"time"
)

// PriceSeries samples horizon steps of stepHours length, starting at start,
// out of a decoded day-ahead price document, producing the []float64 a
// scenario.Scenario's Price field expects. It fails closed: any step whose
// time falls outside every TimeSeries in the document is an error rather
// than a silently zero-filled price.
func PriceSeries(doc *PublicationMarketDocument, start time.Time, horizon int, stepHours float64) ([]float64, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("entsoe: horizon must be positive, got %d", horizon)
	}
	if stepHours <= 0 {
		return nil, fmt.Errorf("entsoe: step hours must be positive, got %g", stepHours)
	}

	prices := make([]float64, horizon)
	step := time.Duration(stepHours * float64(time.Hour))

	for i := 0; i < horizon; i++ {
		t := start.Add(time.Duration(i) * step)
		price, found := doc.LookupPriceByTime(t)
		if !found {
			return nil, fmt.Errorf("entsoe: no price found for step %d at %s", i, t.Format(time.RFC3339))
		}
		prices[i] = price
	}

	return prices, nil
}
