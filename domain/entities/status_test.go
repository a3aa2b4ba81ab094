package entities

import (
	"math"
	"testing"
)

func TestClassifyPHBands(t *testing.T) {
	// Walk the whole interesting range in 0.01 steps so no gap between bands can hide
	for i := 400; i <= 1100; i++ {
		v := float64(i) / 100
		got := ClassifyValue(MetricPH, v).Status

		var want Status
		switch {
		case v >= 6.5 && v <= 8.5:
			want = StatusSafe
		case v < 6.0 || v > 9.0:
			want = StatusAlert
		default:
			want = StatusWarning
		}

		if got != want {
			t.Errorf("pH %.2f: expected %s, got %s", v, want, got)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		metric  Metric
		value   float64
		status  Status
		display string
	}{
		{MetricPH, 6.5, StatusSafe, "6.5"},
		{MetricPH, 8.5, StatusSafe, "8.5"},
		{MetricPH, 6.49, StatusWarning, "6.5"},
		{MetricPH, 6.0, StatusWarning, "6.0"},
		{MetricPH, 5.99, StatusAlert, "6.0"},
		{MetricPH, 8.7, StatusWarning, "8.7"},
		{MetricPH, 9.0, StatusWarning, "9.0"},
		{MetricPH, 9.01, StatusAlert, "9.0"},
		{MetricTurbidity, 5, StatusSafe, "5.0 NTU"},
		{MetricTurbidity, 5.1, StatusWarning, "5.1 NTU"},
		{MetricTurbidity, 12, StatusWarning, "12.0 NTU"},
		{MetricTurbidity, 25, StatusWarning, "25.0 NTU"},
		{MetricTurbidity, 25.5, StatusAlert, "25.5 NTU"},
		{MetricTDS, 500, StatusSafe, "500 ppm"},
		{MetricTDS, 500.5, StatusWarning, "500.5 ppm"},
		{MetricTDS, 1000, StatusWarning, "1000 ppm"},
		{MetricTDS, 1001, StatusAlert, "1001 ppm"},
	}

	for _, tt := range tests {
		got := ClassifyValue(tt.metric, tt.value)
		if got.Status != tt.status {
			t.Errorf("%s %v: expected status %s, got %s", tt.metric, tt.value, tt.status, got.Status)
		}
		if got.Display != tt.display {
			t.Errorf("%s %v: expected display %q, got %q", tt.metric, tt.value, tt.display, got.Display)
		}
	}
}

func TestClassifyUnavailable(t *testing.T) {
	nan := math.NaN()
	seven := 7.0

	cases := map[string]Assessment{
		"nil":            Classify(MetricPH, nil),
		"nan":            Classify(MetricTDS, &nan),
		"unknown metric": Classify(Metric("chlorine"), &seven),
	}
	for name, got := range cases {
		if got.Status != StatusUnavailable {
			t.Errorf("%s: expected %s, got %s", name, StatusUnavailable, got.Status)
		}
		if got.Display != "N/A" {
			t.Errorf("%s: expected N/A display, got %q", name, got.Display)
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	for _, m := range Metrics {
		for _, v := range []float64{math.Inf(-1), -1e9, -1, 0, 1e9, math.Inf(1)} {
			s := ClassifyValue(m, v).Status
			if s != StatusSafe && s != StatusWarning && s != StatusAlert {
				t.Errorf("%s %v: expected a band status, got %s", m, v, s)
			}
		}
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all safe", []Status{StatusSafe, StatusSafe, StatusSafe}, StatusSafe},
		{"one alert wins", []Status{StatusSafe, StatusWarning, StatusAlert}, StatusAlert},
		{"single warning", []Status{StatusSafe, StatusWarning, StatusSafe}, StatusWarning},
		{"unavailable ignored", []Status{StatusUnavailable, StatusSafe, StatusSafe}, StatusSafe},
		{"nothing known", []Status{StatusUnavailable, StatusUnavailable}, StatusUnavailable},
		{"empty", nil, StatusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.statuses...); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

// A device with one metric in its warning band and the others safe must be
// reported as warning. An OR across the "safe" conditions used to mask this.
func TestAssessReadingWarningReachable(t *testing.T) {
	cases := []*Reading{
		{PH: 8.7, Turbidity: 3, TDS: 300},
		{PH: 7.0, Turbidity: 12, TDS: 300},
		{PH: 7.0, Turbidity: 3, TDS: 800},
	}
	for _, r := range cases {
		if got := AssessReading(r).Overall; got != StatusWarning {
			t.Errorf("reading %+v: expected %s, got %s", r, StatusWarning, got)
		}
	}
}

func TestAlertMessage(t *testing.T) {
	r := &Reading{PH: 9.4, Turbidity: 3, TDS: 1200}
	a := AssessReading(r)

	if a.Overall != StatusAlert {
		t.Fatalf("Expected alert, got %s", a.Overall)
	}

	want := "High pH level detected: 9.4; High TDS level detected: 1200 ppm"
	if got := AlertMessage(r, a); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	low := &Reading{PH: 4.2, Turbidity: 1, TDS: 100}
	if got := AlertMessage(low, AssessReading(low)); got != "Low pH level detected: 4.2" {
		t.Errorf("Unexpected low pH message %q", got)
	}

	safe := &Reading{PH: 7, Turbidity: 1, TDS: 100}
	if got := AlertMessage(safe, AssessReading(safe)); got != "" {
		t.Errorf("Expected empty message for safe reading, got %q", got)
	}
}

func TestExceedsAlertHigh(t *testing.T) {
	if ExceedsAlertHigh(MetricPH, 9.0) {
		t.Error("9.0 is the top of the warning band, not an alert")
	}
	if !ExceedsAlertHigh(MetricPH, 9.1) {
		t.Error("9.1 should exceed the pH alert threshold")
	}
	if ExceedsAlertHigh(MetricPH, 3) {
		t.Error("low pH is not above the high threshold")
	}
}
