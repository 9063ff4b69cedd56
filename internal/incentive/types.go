package incentive

// AnswerType describes how a raw answer string maps onto a score range.
// MostNegative and MostPositive are the two scoring endpoints; either may be
// the larger value, encoding a forward or reverse scale. Both endpoints set to
// zero marks a free-text answer type that is excluded from scoring.
type AnswerType struct {
	ID           int64
	ShortName    string
	Description  string
	MostNegative *int
	MostPositive *int
}

// FreeText reports whether the answer type is the free-text marker (both
// endpoints zero) and therefore contributes nothing to scoring.
func (at AnswerType) FreeText() bool {
	return at.MostNegative != nil && at.MostPositive != nil &&
		*at.MostNegative == 0 && *at.MostPositive == 0
}

// CategoryKind identifies one of the two independent selection targets.
type CategoryKind int

const (
	// CategoryDelivery routes a factor's score to the delivery model group.
	CategoryDelivery CategoryKind = iota + 1
	// CategoryIncentive routes a factor's score to the incentive type group.
	CategoryIncentive
)

// Category is the tagged routing target of a factor: exactly one kind and the
// id of the delivery model or incentive type it scores toward. A factor that
// is not used for scoring carries no Category at all.
type Category struct {
	Kind CategoryKind
	ID   int64
}

// Factor links a survey question to its configuration category.
type Factor struct {
	ID       int64
	Name     string
	Category *Category
}

// Question is a survey question together with the reference data the scorer
// needs: its weight, answer type, and factor routing.
type Question struct {
	ID         int64
	Text       string
	Weight     *int
	AnswerType AnswerType
	Factor     Factor
}

// QuestionAnswer is one respondent's answer to one question. Answer is nil
// when the respondent left the question blank.
type QuestionAnswer struct {
	Question Question
	Answer   *string
}

// Score accumulates per-option weighted totals alongside the possible minimum
// and maximum those totals could have reached.
type Score struct {
	WeightedSum int
	Minimum     int
	Maximum     int
}

// Configuration is the selected pair of category winners for one respondent.
type Configuration struct {
	DeliveryModelID int64 `json:"delivery_model"`
	IncentiveTypeID int64 `json:"incentive_type"`
}

// EmployeeModel is a persisted configuration for one respondent, with the
// winning option names resolved for presentation.
type EmployeeModel struct {
	RespondentID    string `json:"respondent_id"`
	DeliveryModelID int64  `json:"-"`
	IncentiveTypeID int64  `json:"-"`
	DeliveryModel   string `json:"delivery_model"`
	IncentiveType   string `json:"incentive_type"`
}
