package repositories

import (
	"context"

	"github.com/bhargav676/intern/domain/entities"
)

// Advisor abstracts any provider of remediation advice for a bad reading
type Advisor interface {
	// Advise returns a short plain-text note for the account holder
	Advise(ctx context.Context, reading *entities.Reading, assessment entities.ReadingAssessment) (string, error)
}
