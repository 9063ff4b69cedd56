package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldhauser/incentiva/internal/incentive"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db)
}

// seedSurvey creates two delivery models, two incentive types and a survey
// with one question per category.
func seedSurvey(t *testing.T, repo *Repository) (surveyID int64, questionIDs []int64) {
	t.Helper()
	ctx := context.Background()

	mail, err := repo.CreateDeliveryModel(ctx, "mail", "results by mail")
	require.NoError(t, err)
	dashboard, err := repo.CreateDeliveryModel(ctx, "dashboard", "results on a dashboard")
	require.NoError(t, err)
	bonus, err := repo.CreateIncentiveType(ctx, "bonus", "monetary bonus")
	require.NoError(t, err)
	leave, err := repo.CreateIncentiveType(ctx, "leave", "extra leave days")
	require.NoError(t, err)

	likert7, err := repo.CreateAnswerType(ctx, "likert_7", "7 point likert scale", 7, 1)
	require.NoError(t, err)

	factors := []*Factor{}
	for _, spec := range []struct {
		name     string
		category incentive.Category
	}{
		{"privacy", incentive.Category{Kind: incentive.CategoryDelivery, ID: mail.ID}},
		{"transparency", incentive.Category{Kind: incentive.CategoryDelivery, ID: dashboard.ID}},
		{"money", incentive.Category{Kind: incentive.CategoryIncentive, ID: bonus.ID}},
		{"time", incentive.Category{Kind: incentive.CategoryIncentive, ID: leave.ID}},
	} {
		f, err := repo.CreateFactor(ctx, spec.name, spec.category)
		require.NoError(t, err)
		factors = append(factors, f)
	}

	survey, err := repo.CreateSurvey(ctx, "onboarding", "initial incentive survey")
	require.NoError(t, err)

	for _, f := range factors {
		q, err := repo.CreateQuestion(ctx, "How much do you value "+f.Name+"?", 1, f.ID, likert7.ID)
		require.NoError(t, err)
		require.NoError(t, repo.AddQuestionToSurvey(ctx, survey.ID, q.ID))
		questionIDs = append(questionIDs, q.ID)
	}
	return survey.ID, questionIDs
}

func TestGetSurveyQuestions(t *testing.T) {
	repo := newTestRepository(t)
	surveyID, questionIDs := seedSurvey(t, repo)

	questions, err := repo.GetSurveyQuestions(context.Background(), surveyID)
	require.NoError(t, err)
	require.Len(t, questions, len(questionIDs))
	assert.Equal(t, "likert_7", questions[0].AnswerType.ShortName)
	assert.Equal(t, 7, questions[0].AnswerType.MostPositive)
}

func TestGetAnsweredQuestionsJoinsReferenceData(t *testing.T) {
	repo := newTestRepository(t)
	surveyID, questionIDs := seedSurvey(t, repo)
	ctx := context.Background()

	for i, qID := range questionIDs {
		answer := []string{"7", "2", "1", "6"}[i]
		require.NoError(t, repo.CreateQuestionAnswer(ctx, surveyID, qID, "emp-1", answer))
	}

	answers, err := repo.GetAnsweredQuestions(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, answers, 4)

	for _, qa := range answers {
		require.NotNil(t, qa.Answer)
		require.NotNil(t, qa.Question.Weight)
		require.NotNil(t, qa.Question.AnswerType.MostNegative)
		require.NotNil(t, qa.Question.AnswerType.MostPositive)
		require.NotNil(t, qa.Question.Factor.Category)
	}
}

func TestGetAnsweredQuestionsEmptyForUnknownRespondent(t *testing.T) {
	repo := newTestRepository(t)
	seedSurvey(t, repo)

	answers, err := repo.GetAnsweredQuestions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestEmployeeModelRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	seedSurvey(t, repo)
	ctx := context.Background()

	model, err := repo.GetEmployeeModel(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, model)

	created, err := repo.CreateEmployeeModel(ctx, "emp-1", incentive.Configuration{
		DeliveryModelID: 1,
		IncentiveTypeID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "mail", created.DeliveryModel)
	assert.Equal(t, "leave", created.IncentiveType)

	fetched, err := repo.GetEmployeeModel(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created, fetched)
}

func TestIncentiveServiceAgainstRepository(t *testing.T) {
	repo := newTestRepository(t)
	surveyID, questionIDs := seedSurvey(t, repo)
	ctx := context.Background()

	// privacy(mail)=7, transparency(dashboard)=2, money(bonus)=1, time(leave)=6
	for i, qID := range questionIDs {
		answer := []string{"7", "2", "1", "6"}[i]
		require.NoError(t, repo.CreateQuestionAnswer(ctx, surveyID, qID, "emp-1", answer))
	}

	svc := incentive.NewService(repo)
	model, fromCache, err := svc.EmployeeConfiguration(ctx, "emp-1")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "mail", model.DeliveryModel)
	assert.Equal(t, "leave", model.IncentiveType)

	// Second call is a cache hit on the persisted row.
	again, fromCache, err := svc.EmployeeConfiguration(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, model, again)
}

func TestAdminLookup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	missing, err := repo.GetAdminByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.CreateAdmin(ctx, "admin@example.com")
	require.NoError(t, err)

	found, err := repo.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}
