package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Metric names one of the three measured water-quality parameters
type Metric string

const (
	MetricPH        Metric = "ph"
	MetricTurbidity Metric = "turbidity"
	MetricTDS       Metric = "tds"
)

// Metrics lists every metric in display order
var Metrics = []Metric{MetricPH, MetricTurbidity, MetricTDS}

// Status is the qualitative classification of a metric or a whole device
type Status string

const (
	StatusSafe        Status = "safe"
	StatusWarning     Status = "warning"
	StatusAlert       Status = "alert"
	StatusUnavailable Status = "unavailable"
)

// Band holds the closed safe interval of a metric and the wider closed interval
// outside of which a value is an alert. Values between the two are warnings.
type Band struct {
	SafeLow  float64
	SafeHigh float64
	WarnLow  float64
	WarnHigh float64

	Label     string
	Unit      string
	Precision int
}

// Bands is the single threshold table used for every classification
var Bands = map[Metric]Band{
	MetricPH: {
		SafeLow: 6.5, SafeHigh: 8.5,
		WarnLow: 6.0, WarnHigh: 9.0,
		Label: "pH", Precision: 1,
	},
	MetricTurbidity: {
		SafeLow: math.Inf(-1), SafeHigh: 5,
		WarnLow: math.Inf(-1), WarnHigh: 25,
		Label: "turbidity", Unit: "NTU", Precision: 1,
	},
	MetricTDS: {
		SafeLow: math.Inf(-1), SafeHigh: 500,
		WarnLow: math.Inf(-1), WarnHigh: 1000,
		Label: "TDS", Unit: "ppm", Precision: -1,
	},
}

// Assessment is the classification of a single metric value
type Assessment struct {
	Status  Status `json:"status"`
	Display string `json:"display"`
}

func (b Band) classify(v float64) Status {
	switch {
	case v >= b.SafeLow && v <= b.SafeHigh:
		return StatusSafe
	case v >= b.WarnLow && v <= b.WarnHigh:
		return StatusWarning
	default:
		return StatusAlert
	}
}

func (b Band) format(v float64) string {
	s := strconv.FormatFloat(v, 'f', b.Precision, 64)
	if b.Unit == "" {
		return s
	}
	return s + " " + b.Unit
}

// Classify maps a metric value onto its status band. A nil or NaN value, or an
// unknown metric, yields StatusUnavailable.
func Classify(metric Metric, value *float64) Assessment {
	band, ok := Bands[metric]
	if !ok || value == nil || math.IsNaN(*value) {
		return Assessment{Status: StatusUnavailable, Display: "N/A"}
	}
	return Assessment{Status: band.classify(*value), Display: band.format(*value)}
}

// ClassifyValue is Classify for a value known to be present
func ClassifyValue(metric Metric, value float64) Assessment {
	return Classify(metric, &value)
}

// Aggregate folds per-metric statuses into a device status: alert if any metric
// alerts, otherwise warning if any warns, otherwise safe. Unavailable metrics
// are ignored unless nothing else is known.
func Aggregate(statuses ...Status) Status {
	var anyWarning, anySafe bool
	for _, s := range statuses {
		switch s {
		case StatusAlert:
			return StatusAlert
		case StatusWarning:
			anyWarning = true
		case StatusSafe:
			anySafe = true
		}
	}
	switch {
	case anyWarning:
		return StatusWarning
	case anySafe:
		return StatusSafe
	default:
		return StatusUnavailable
	}
}

// ReadingAssessment is the derived status of a whole reading
type ReadingAssessment struct {
	PH        Assessment `json:"ph"`
	Turbidity Assessment `json:"turbidity"`
	TDS       Assessment `json:"tds"`
	Overall   Status     `json:"overall"`
}

// AssessReading classifies every metric of r and aggregates them
func AssessReading(r *Reading) ReadingAssessment {
	a := ReadingAssessment{
		PH:        ClassifyValue(MetricPH, r.PH),
		Turbidity: ClassifyValue(MetricTurbidity, r.Turbidity),
		TDS:       ClassifyValue(MetricTDS, r.TDS),
	}
	a.Overall = Aggregate(a.PH.Status, a.Turbidity.Status, a.TDS.Status)
	return a
}

// Of returns the assessment of one metric
func (a ReadingAssessment) Of(m Metric) Assessment {
	switch m {
	case MetricPH:
		return a.PH
	case MetricTurbidity:
		return a.Turbidity
	case MetricTDS:
		return a.TDS
	}
	return Assessment{Status: StatusUnavailable, Display: "N/A"}
}

// MetricsIn returns the metrics of the reading that have the given status
func (a ReadingAssessment) MetricsIn(s Status) []Metric {
	var out []Metric
	for _, m := range Metrics {
		if a.Of(m).Status == s {
			out = append(out, m)
		}
	}
	return out
}

// Value returns the raw value of metric m
func (r *Reading) Value(m Metric) float64 {
	switch m {
	case MetricPH:
		return r.PH
	case MetricTurbidity:
		return r.Turbidity
	case MetricTDS:
		return r.TDS
	}
	return math.NaN()
}

// AlertMessage describes every alerting metric of r, e.g.
// "High pH level detected: 9.4". It is empty when nothing alerts.
func AlertMessage(r *Reading, a ReadingAssessment) string {
	var parts []string
	for _, m := range a.MetricsIn(StatusAlert) {
		band := Bands[m]
		direction := "High"
		if r.Value(m) < band.SafeLow {
			direction = "Low"
		}
		parts = append(parts, fmt.Sprintf("%s %s level detected: %s", direction, band.Label, a.Of(m).Display))
	}
	return strings.Join(parts, "; ")
}

// ExceedsAlertHigh reports whether the value of m is above the alert threshold
func ExceedsAlertHigh(m Metric, value float64) bool {
	band, ok := Bands[m]
	return ok && value > band.WarnHigh
}
