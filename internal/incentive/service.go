package incentive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotSurveyed is the expected business outcome for a respondent who has
// not answered any survey question yet.
var ErrNotSurveyed = errors.New("respondent has not completed the survey yet")

// Store is the persistence collaborator the service reads from and writes to.
// GetEmployeeModel returns (nil, nil) when no configuration has been computed
// for the respondent yet.
type Store interface {
	GetEmployeeModel(ctx context.Context, respondentID string) (*EmployeeModel, error)
	GetAnsweredQuestions(ctx context.Context, respondentID string) ([]QuestionAnswer, error)
	CreateEmployeeModel(ctx context.Context, respondentID string, cfg Configuration) (*EmployeeModel, error)
}

// Service computes and caches incentive configurations per respondent.
type Service struct {
	store Store
}

// NewService creates a new incentive service on top of the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EmployeeConfiguration returns the incentive configuration for a respondent,
// computing and persisting it from survey answers on first access. The second
// return value reports whether a stored configuration was reused.
//
// Returns ErrNotSurveyed when the respondent has no answered questions and
// ErrIncompleteConfiguration when the answers cannot produce a winner for
// both category groups. A one-sided result is never persisted.
func (s *Service) EmployeeConfiguration(ctx context.Context, respondentID string) (*EmployeeModel, bool, error) {
	model, err := s.store.GetEmployeeModel(ctx, respondentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up employee model: %w", err)
	}
	if model != nil {
		return model, true, nil
	}

	answers, err := s.store.GetAnsweredQuestions(ctx, respondentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load answered questions: %w", err)
	}
	if len(answers) == 0 {
		slog.Info("Respondent has not completed the survey yet", "respondent_id", respondentID)
		return nil, false, ErrNotSurveyed
	}

	slog.Info("Calculating configuration", "respondent_id", respondentID)
	cfg, err := CalculateDeliveryAndIncentive(answers)
	if err != nil {
		return nil, false, err
	}

	model, err = s.store.CreateEmployeeModel(ctx, respondentID, *cfg)
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist employee model: %w", err)
	}
	return model, false, nil
}
