package incentive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	model   *EmployeeModel
	answers []QuestionAnswer
	created *Configuration
}

func (f *fakeStore) GetEmployeeModel(_ context.Context, _ string) (*EmployeeModel, error) {
	return f.model, nil
}

func (f *fakeStore) GetAnsweredQuestions(_ context.Context, _ string) ([]QuestionAnswer, error) {
	return f.answers, nil
}

func (f *fakeStore) CreateEmployeeModel(_ context.Context, respondentID string, cfg Configuration) (*EmployeeModel, error) {
	f.created = &cfg
	return &EmployeeModel{
		RespondentID:    respondentID,
		DeliveryModelID: cfg.DeliveryModelID,
		IncentiveTypeID: cfg.IncentiveTypeID,
	}, nil
}

func TestEmployeeConfigurationCacheHit(t *testing.T) {
	cached := &EmployeeModel{RespondentID: "emp-1", DeliveryModelID: 1, IncentiveTypeID: 2}
	store := &fakeStore{model: cached}
	svc := NewService(store)

	model, fromCache, err := svc.EmployeeConfiguration(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Same(t, cached, model)
	assert.True(t, fromCache)
	assert.Nil(t, store.created)
}

func TestEmployeeConfigurationNotSurveyed(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	model, _, err := svc.EmployeeConfiguration(context.Background(), "emp-1")
	assert.Nil(t, model)
	assert.ErrorIs(t, err, ErrNotSurveyed)
}

func TestEmployeeConfigurationComputesAndPersists(t *testing.T) {
	likert7 := answerType(1, 7)
	store := &fakeStore{
		answers: []QuestionAnswer{
			scoredQuestion(1, 1, likert7, &Category{Kind: CategoryDelivery, ID: 10}, "7"),
			scoredQuestion(2, 1, likert7, &Category{Kind: CategoryIncentive, ID: 20}, "3"),
		},
	}
	svc := NewService(store)

	model, fromCache, err := svc.EmployeeConfiguration(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.NotNil(t, store.created)
	assert.Equal(t, int64(10), model.DeliveryModelID)
	assert.Equal(t, int64(20), model.IncentiveTypeID)
	assert.Equal(t, "emp-1", model.RespondentID)
}

func TestEmployeeConfigurationIncompleteNotPersisted(t *testing.T) {
	likert7 := answerType(1, 7)
	store := &fakeStore{
		answers: []QuestionAnswer{
			scoredQuestion(1, 1, likert7, &Category{Kind: CategoryDelivery, ID: 10}, "7"),
		},
	}
	svc := NewService(store)

	model, _, err := svc.EmployeeConfiguration(context.Background(), "emp-1")
	assert.Nil(t, model)
	assert.ErrorIs(t, err, ErrIncompleteConfiguration)
	assert.Nil(t, store.created)
}
