package incentive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func scoredQuestion(id int64, weight int, at AnswerType, category *Category, answer string) QuestionAnswer {
	return QuestionAnswer{
		Question: Question{
			ID:         id,
			Weight:     intPtr(weight),
			AnswerType: at,
			Factor:     Factor{ID: id, Category: category},
		},
		Answer: strPtr(answer),
	}
}

func TestNormalizeAndSelect(t *testing.T) {
	tests := []struct {
		name   string
		scores map[int64]Score
		want   int64
	}{
		{
			name:   "empty group selects none",
			scores: map[int64]Score{},
			want:   0,
		},
		{
			name: "picks highest normalized score not highest sum",
			scores: map[int64]Score{
				1: {WeightedSum: 50, Minimum: 10, Maximum: 60},
				2: {WeightedSum: 60, Minimum: 50, Maximum: 120},
			},
			want: 1,
		},
		{
			name: "zero range normalizes to zero",
			scores: map[int64]Score{
				1: {WeightedSum: 5, Minimum: 5, Maximum: 5},
				2: {WeightedSum: 3, Minimum: 2, Maximum: 6},
			},
			want: 2,
		},
		{
			name: "tie resolves to smallest option id",
			scores: map[int64]Score{
				3: {WeightedSum: 6, Minimum: 2, Maximum: 10},
				7: {WeightedSum: 6, Minimum: 2, Maximum: 10},
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAndSelect(tt.scores))
		})
	}
}

func TestCalculateDeliveryAndIncentive(t *testing.T) {
	likert7 := answerType(1, 7)
	delivery := func(id int64) *Category { return &Category{Kind: CategoryDelivery, ID: id} }
	incentive := func(id int64) *Category { return &Category{Kind: CategoryIncentive, ID: id} }

	answers := []QuestionAnswer{
		scoredQuestion(1, 2, likert7, delivery(10), "7"),
		scoredQuestion(2, 1, likert7, delivery(11), "2"),
		scoredQuestion(3, 3, likert7, incentive(20), "1"),
		scoredQuestion(4, 1, likert7, incentive(21), "6"),
	}

	cfg, err := CalculateDeliveryAndIncentive(answers)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.DeliveryModelID)
	assert.Equal(t, int64(21), cfg.IncentiveTypeID)
}

func TestCalculateDeliveryAndIncentiveSkipsBlankRows(t *testing.T) {
	likert7 := answerType(1, 7)

	blankAnswer := scoredQuestion(1, 1, likert7, &Category{Kind: CategoryDelivery, ID: 10}, "")
	blankAnswer.Answer = nil
	noWeight := scoredQuestion(2, 1, likert7, &Category{Kind: CategoryIncentive, ID: 20}, "5")
	noWeight.Question.Weight = nil

	answers := []QuestionAnswer{
		blankAnswer,
		noWeight,
		scoredQuestion(3, 1, likert7, &Category{Kind: CategoryDelivery, ID: 10}, "4"),
		scoredQuestion(4, 1, likert7, &Category{Kind: CategoryIncentive, ID: 20}, "6"),
	}

	cfg, err := CalculateDeliveryAndIncentive(answers)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.DeliveryModelID)
	assert.Equal(t, int64(20), cfg.IncentiveTypeID)
}

func TestCalculateDeliveryAndIncentiveIncomplete(t *testing.T) {
	likert7 := answerType(1, 7)

	tests := []struct {
		name    string
		answers []QuestionAnswer
	}{
		{
			name:    "no answers at all",
			answers: nil,
		},
		{
			name: "only delivery answers",
			answers: []QuestionAnswer{
				scoredQuestion(1, 1, likert7, &Category{Kind: CategoryDelivery, ID: 10}, "4"),
			},
		},
		{
			name: "only incentive answers",
			answers: []QuestionAnswer{
				scoredQuestion(1, 1, likert7, &Category{Kind: CategoryIncentive, ID: 20}, "4"),
			},
		},
		{
			name: "uncategorized answers only",
			answers: []QuestionAnswer{
				scoredQuestion(1, 1, likert7, nil, "4"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := CalculateDeliveryAndIncentive(tt.answers)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrIncompleteConfiguration)
		})
	}
}

func TestCalculateDeliveryAndIncentiveFreeTextExcluded(t *testing.T) {
	freeText := answerType(0, 0)
	likert7 := answerType(1, 7)

	// A free-text answer scores (0, 0, 0); it contributes a zero-range entry
	// but never an error, and the quantifiable answers still decide.
	answers := []QuestionAnswer{
		scoredQuestion(1, 1, freeText, &Category{Kind: CategoryDelivery, ID: 10}, "lovely"),
		scoredQuestion(2, 1, likert7, &Category{Kind: CategoryDelivery, ID: 11}, "7"),
		scoredQuestion(3, 1, likert7, &Category{Kind: CategoryIncentive, ID: 20}, "6"),
	}

	cfg, err := CalculateDeliveryAndIncentive(answers)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.DeliveryModelID)
	assert.Equal(t, int64(20), cfg.IncentiveTypeID)
}

func TestCalculateDeliveryAndIncentiveBrokenAnswerType(t *testing.T) {
	broken := AnswerType{ID: 9, MostNegative: intPtr(1)}

	answers := []QuestionAnswer{
		scoredQuestion(1, 1, broken, &Category{Kind: CategoryDelivery, ID: 10}, "5"),
	}

	_, err := CalculateDeliveryAndIncentive(answers)
	assert.ErrorIs(t, err, ErrBrokenAnswerType)
}
