package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
)

func TestStaticAdvisor(t *testing.T) {
	r := &entities.Reading{PH: 4.5, Turbidity: 40, TDS: 200}
	advice, err := NewStaticAdvisor().Advise(context.Background(), r, entities.AssessReading(r))
	if err != nil {
		t.Fatalf("Advise failed: %v", err)
	}
	if !strings.Contains(advice, "too acidic") {
		t.Errorf("Low pH guidance missing: %s", advice)
	}
	if !strings.Contains(advice, "cloudy") {
		t.Errorf("Turbidity guidance missing: %s", advice)
	}
}

func TestPrompt(t *testing.T) {
	r := &entities.Reading{PH: 9.6, Turbidity: 2, TDS: 200}
	p := Prompt(r, entities.AssessReading(r))
	if !strings.Contains(p, "pH 9.6 (alert)") || !strings.Contains(p, "High pH level detected") {
		t.Errorf("Unexpected prompt %q", p)
	}
}

type failingAdvisor struct{}

func (failingAdvisor) Advise(context.Context, *entities.Reading, entities.ReadingAssessment) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestFallback(t *testing.T) {
	f := Fallback{Primary: failingAdvisor{}, Secondary: NewStaticAdvisor(), Logger: zap.NewNop()}
	r := &entities.Reading{PH: 9.6, Turbidity: 2, TDS: 200}
	advice, err := f.Advise(context.Background(), r, entities.AssessReading(r))
	if err != nil {
		t.Fatalf("Fallback should hide primary failure, got: %v", err)
	}
	if !strings.Contains(advice, "alkaline") {
		t.Errorf("Expected static advice, got %q", advice)
	}
}
