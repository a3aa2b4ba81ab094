package llm

import (
	"context"
	"strings"

	"github.com/bhargav676/intern/domain/entities"
)

var guidance = map[entities.Metric]map[string]string{
	entities.MetricPH: {
		"High": "The water is too alkaline. Check for cement or lime contamination and avoid drinking it until pH is back between 6.5 and 8.5.",
		"Low":  "The water is too acidic and may leach metals from pipes. Avoid drinking it and consider a neutralizing filter.",
	},
	entities.MetricTurbidity: {
		"High": "The water is cloudy. Let sediment settle and filter or boil it before use, and inspect the source for runoff.",
	},
	entities.MetricTDS: {
		"High": "Dissolved solids are very high. Use a reverse-osmosis filter or an alternative source for drinking water.",
	},
}

// StaticAdvisor gives canned guidance for each alerting metric
type StaticAdvisor struct{}

func NewStaticAdvisor() StaticAdvisor {
	return StaticAdvisor{}
}

// Advise implements repositories.Advisor
func (StaticAdvisor) Advise(ctx context.Context, reading *entities.Reading, assessment entities.ReadingAssessment) (string, error) {
	var notes []string
	for _, m := range assessment.MetricsIn(entities.StatusAlert) {
		direction := "High"
		if reading.Value(m) < entities.Bands[m].SafeLow {
			direction = "Low"
		}
		if note, ok := guidance[m][direction]; ok {
			notes = append(notes, note)
		}
	}
	if len(notes) == 0 {
		return "Monitor the next readings and contact your water provider if the problem persists.", nil
	}
	return strings.Join(notes, " "), nil
}
