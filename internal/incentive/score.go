package incentive

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBrokenAnswerType indicates reference data corruption: an answer type with
// an undefined scoring endpoint. It must never be coerced to a default score.
var ErrBrokenAnswerType = errors.New("answer type has undefined scoring bounds")

// MalformedAnswerError reports a non-integer answer on a scored answer type.
type MalformedAnswerError struct {
	AnswerTypeID int64
	Answer       string
}

func (e *MalformedAnswerError) Error() string {
	return fmt.Sprintf("malformed answer %q for answer type %d", e.Answer, e.AnswerTypeID)
}

// CalculateScore converts a raw answer string into a score, taking forward and
// reverse scales into account. It returns the converted score together with
// the possible minimum and maximum of the answer type's range.
//
// The score is the distance from the most negative endpoint, re-based into
// [min, max], so a reverse scale (most negative > most positive) yields the
// same ordering as a forward one. A free-text answer type (both endpoints
// zero) scores as (0, 0, 0) and is skipped by aggregation.
func CalculateScore(answerType AnswerType, answer string) (score, minScore, maxScore int, err error) {
	if answerType.MostNegative == nil || answerType.MostPositive == nil {
		return 0, 0, 0, fmt.Errorf("%w: answer type %d", ErrBrokenAnswerType, answerType.ID)
	}

	neg, pos := *answerType.MostNegative, *answerType.MostPositive
	minScore = min(neg, pos)
	maxScore = max(neg, pos)

	value, convErr := strconv.Atoi(answer)
	if convErr != nil {
		if answerType.FreeText() {
			return 0, 0, 0, nil
		}
		return 0, 0, 0, &MalformedAnswerError{AnswerTypeID: answerType.ID, Answer: answer}
	}

	distance := value - neg
	if distance < 0 {
		distance = -distance
	}
	return distance + minScore, minScore, maxScore, nil
}
