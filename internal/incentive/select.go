package incentive

import (
	"errors"
	"log/slog"
	"sort"
)

// ErrIncompleteConfiguration is the expected business outcome when a
// respondent has no quantifiable answer for at least one of the two category
// groups. Nothing is selected or persisted in that case.
var ErrIncompleteConfiguration = errors.New("no quantifiable answer for at least one configuration category")

// NormalizeAndSelect min-max normalizes a score group and returns the option
// id with the highest normalized score. Options are visited in ascending id
// order, and only a strictly greater score replaces the current winner, so
// ties resolve to the smallest option id. An empty group selects 0.
func NormalizeAndSelect(scores map[int64]Score) int64 {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var selectedID int64
	selectedScore := -1.0
	for _, id := range ids {
		score := scores[id]
		normalized := 0.0
		if scoreRange := score.Maximum - score.Minimum; scoreRange > 0 {
			normalized = float64(score.WeightedSum-score.Minimum) / float64(scoreRange)
		}
		if normalized > selectedScore {
			selectedID, selectedScore = id, normalized
		}
	}
	return selectedID
}

// CalculateDeliveryAndIncentive aggregates a respondent's answers into the two
// category groups and selects a winner for each.
//
// Rows with a missing answer or question weight are logged and skipped; one
// bad row does not abort the aggregation. Answers whose factor carries no
// category are excluded from both groups. Returns
// ErrIncompleteConfiguration when either group ends up empty.
func CalculateDeliveryAndIncentive(answers []QuestionAnswer) (*Configuration, error) {
	deliveryScores := make(map[int64]Score)
	incentiveScores := make(map[int64]Score)

	for _, qa := range answers {
		question := qa.Question
		if qa.Answer == nil || question.Weight == nil {
			slog.Warn("Skipping answer with empty answer or weight field", "question_id", question.ID)
			continue
		}

		score, minValue, maxValue, err := CalculateScore(question.AnswerType, *qa.Answer)
		if err != nil {
			return nil, err
		}

		category := question.Factor.Category
		if category == nil {
			continue
		}

		group := deliveryScores
		if category.Kind == CategoryIncentive {
			group = incentiveScores
		}
		record := group[category.ID]
		weight := *question.Weight
		record.WeightedSum += weight * score
		record.Minimum += weight * minValue
		record.Maximum += weight * maxValue
		group[category.ID] = record
	}

	if len(deliveryScores) == 0 || len(incentiveScores) == 0 {
		slog.Warn("Cannot calculate complete configuration",
			"delivery_options", len(deliveryScores),
			"incentive_options", len(incentiveScores))
		return nil, ErrIncompleteConfiguration
	}

	return &Configuration{
		DeliveryModelID: NormalizeAndSelect(deliveryScores),
		IncentiveTypeID: NormalizeAndSelect(incentiveScores),
	}, nil
}
