package entsoe

import (
	"strings"
	"testing"
	"time"
)

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "1 hour", input: "PT1H", expected: time.Hour},
		{name: "60 minutes", input: "PT60M", expected: 60 * time.Minute},
		{name: "30 seconds", input: "PT30S", expected: 30 * time.Second},
		{name: "1 hour 30 minutes", input: "PT1H30M", expected: time.Hour + 30*time.Minute},
		{name: "1 day", input: "P1D", expected: 24 * time.Hour},
		{name: "1 day 2 hours", input: "P1DT2H", expected: 24*time.Hour + 2*time.Hour},
		{name: "complex duration", input: "P1DT2H30M45S", expected: 24*time.Hour + 2*time.Hour + 30*time.Minute + 45*time.Second},
		{name: "fractional seconds", input: "PT0.5S", expected: 500 * time.Millisecond},
		{name: "invalid format - missing P", input: "T1H", wantErr: true},
		{name: "invalid format - empty string", input: "", wantErr: true},
		{name: "empty duration - only P", input: "P", expected: 0},
		{name: "invalid unit", input: "PT1X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseISO8601Duration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseISO8601Duration() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("parseISO8601Duration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestParseDatePart(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "1 day", input: "1D", expected: 24 * time.Hour},
		{name: "1 month (approximate)", input: "1M", expected: 30 * 24 * time.Hour},
		{name: "1 year (approximate)", input: "1Y", expected: 365 * 24 * time.Hour},
		{name: "combined year/month/day", input: "1Y1M1D", expected: 365*24*time.Hour + 30*24*time.Hour + 24*time.Hour},
		{name: "invalid unit", input: "1X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDatePart(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDatePart() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("parseDatePart() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestParseTimePart(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "1 hour", input: "1H", expected: time.Hour},
		{name: "30 minutes", input: "30M", expected: 30 * time.Minute},
		{name: "combined", input: "1H30M45S", expected: time.Hour + 30*time.Minute + 45*time.Second},
		{name: "invalid unit", input: "1X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTimePart(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseTimePart() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("parseTimePart() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "integer", input: "42", expected: 42.0},
		{name: "decimal", input: "3.14", expected: 3.14},
		{name: "decimal with trailing zeros", input: "2.50", expected: 2.5},
		{name: "invalid character", input: "1.2a3", wantErr: true},
		{name: "multiple dots", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseFloat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseFloat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("parseFloat() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestPeriodGetPriceByTime(t *testing.T) {
	period := &Period{
		TimeInterval: TimeInterval{
			Start: time.Date(2025, 9, 4, 22, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 9, 5, 22, 0, 0, 0, time.UTC),
		},
		Resolution: time.Hour,
		Points: []Point{
			{Position: 1, PriceAmount: 100.0},
			{Position: 2, PriceAmount: 200.0},
			{Position: 3, PriceAmount: 300.0},
		},
	}

	tests := []struct {
		name          string
		queryTime     time.Time
		expectedPrice float64
		shouldFind    bool
	}{
		{name: "exact start time", queryTime: time.Date(2025, 9, 4, 22, 0, 0, 0, time.UTC), expectedPrice: 100.0, shouldFind: true},
		{name: "start of second hour", queryTime: time.Date(2025, 9, 4, 23, 0, 0, 0, time.UTC), expectedPrice: 200.0, shouldFind: true},
		{name: "middle of third hour", queryTime: time.Date(2025, 9, 5, 0, 15, 0, 0, time.UTC), expectedPrice: 300.0, shouldFind: true},
		{name: "before period start", queryTime: time.Date(2025, 9, 4, 21, 30, 0, 0, time.UTC), shouldFind: false},
		{name: "at exact period end", queryTime: time.Date(2025, 9, 5, 22, 0, 0, 0, time.UTC), shouldFind: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, found := period.GetPriceByTime(tt.queryTime)
			if found != tt.shouldFind {
				t.Errorf("GetPriceByTime() found = %v, want %v", found, tt.shouldFind)
			}
			if found && price != tt.expectedPrice {
				t.Errorf("GetPriceByTime() price = %v, want %v", price, tt.expectedPrice)
			}
		})
	}
}

func TestPeriodCalculatePosition(t *testing.T) {
	period := &Period{
		TimeInterval: TimeInterval{
			Start: time.Date(2025, 9, 4, 22, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 9, 5, 22, 0, 0, 0, time.UTC),
		},
		Resolution: time.Hour,
	}

	tests := []struct {
		name             string
		queryTime        time.Time
		expectedPosition int
	}{
		{name: "start time - position 1", queryTime: time.Date(2025, 9, 4, 22, 0, 0, 0, time.UTC), expectedPosition: 1},
		{name: "1 hour later - position 2", queryTime: time.Date(2025, 9, 4, 23, 0, 0, 0, time.UTC), expectedPosition: 2},
		{name: "before start - position 0", queryTime: time.Date(2025, 9, 4, 21, 0, 0, 0, time.UTC), expectedPosition: 0},
		{name: "at end time - position 0", queryTime: time.Date(2025, 9, 5, 22, 0, 0, 0, time.UTC), expectedPosition: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position := period.calculatePosition(tt.queryTime)
			if position != tt.expectedPosition {
				t.Errorf("calculatePosition() = %v, want %v", position, tt.expectedPosition)
			}
		})
	}
}

// TestDocumentDecode decodes an inline document rather than reading a fixture
// file off disk, so the test is self-contained and the tree carries no
// separate test_data directory.
func TestDocumentDecode(t *testing.T) {
	const xml = `<?xml version="1.0" encoding="UTF-8"?>
<Publication_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-3:publicationdocument:7:0">
    <mRID>doc-1</mRID>
    <period.timeInterval>
        <start>2025-09-11T22:00Z</start>
        <end>2025-09-12T22:00Z</end>
    </period.timeInterval>
    <TimeSeries>
        <mRID>1</mRID>
        <Period>
            <timeInterval>
                <start>2025-09-11T22:00Z</start>
                <end>2025-09-12T22:00Z</end>
            </timeInterval>
            <resolution>PT1H</resolution>
            <Point><position>1</position><price.amount>52.10</price.amount></Point>
            <Point><position>15</position><price.amount>57.73</price.amount></Point>
        </Period>
    </TimeSeries>
</Publication_MarketDocument>`

	doc, err := DecodeEnergyPricesXML(strings.NewReader(xml))
	if err != nil {
		t.Fatal(err)
	}

	ts := time.Date(2025, 9, 12, 12, 30, 0, 0, time.UTC)
	price, found := doc.LookupPriceByTime(ts)
	if !found {
		t.Fatalf("price not found for %s", ts)
	}
	if price != 57.73 {
		t.Errorf("returned price: %f, want %f", price, 57.73)
	}
}

// TestDocumentDecodeThenPriceSeries ties the decoder directly to the
// dispatch-facing adaptation: a decoded document sampled into a
// scenario.Scenario's Price array via PriceSeries.
func TestDocumentDecodeThenPriceSeries(t *testing.T) {
	doc := testDoc(time.Date(2025, 9, 11, 22, 0, 0, 0, time.UTC), time.Hour, []float64{52.10, 53.40, 57.73})

	prices, err := PriceSeries(doc, time.Date(2025, 9, 11, 22, 0, 0, 0, time.UTC), 3, 1.0)
	if err != nil {
		t.Fatalf("PriceSeries failed: %v", err)
	}
	want := []float64{52.10, 53.40, 57.73}
	for i, p := range prices {
		if p != want[i] {
			t.Errorf("step %d: expected %g, got %g", i, want[i], p)
		}
	}
}
