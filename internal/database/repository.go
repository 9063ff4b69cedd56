package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mwaldhauser/incentiva/internal/incentive"
)

// Repository handles survey schema database operations. It implements
// incentive.Store for the scoring service.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateDeliveryModel inserts a delivery model option.
func (r *Repository) CreateDeliveryModel(ctx context.Context, name, description string) (*DeliveryModel, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_model (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery model: %w", err)
	}
	id, _ := res.LastInsertId()
	return &DeliveryModel{ID: id, Name: name, Description: description}, nil
}

// CreateIncentiveType inserts an incentive type option.
func (r *Repository) CreateIncentiveType(ctx context.Context, name, description string) (*IncentiveType, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incentive_type (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create incentive type: %w", err)
	}
	id, _ := res.LastInsertId()
	return &IncentiveType{ID: id, Name: name, Description: description}, nil
}

// GetAllDeliveryModels returns every delivery model option.
func (r *Repository) GetAllDeliveryModels(ctx context.Context) ([]DeliveryModel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM delivery_model ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery models: %w", err)
	}
	defer rows.Close()

	var models []DeliveryModel
	for rows.Next() {
		var m DeliveryModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("failed to scan delivery model: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// GetAllIncentiveTypes returns every incentive type option.
func (r *Repository) GetAllIncentiveTypes(ctx context.Context) ([]IncentiveType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM incentive_type ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incentive types: %w", err)
	}
	defer rows.Close()

	var types []IncentiveType
	for rows.Next() {
		var t IncentiveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan incentive type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// GetDeliveryModel returns one delivery model, or nil when it does not exist.
func (r *Repository) GetDeliveryModel(ctx context.Context, id int64) (*DeliveryModel, error) {
	var m DeliveryModel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM delivery_model WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery model: %w", err)
	}
	return &m, nil
}

// GetIncentiveType returns one incentive type, or nil when it does not exist.
func (r *Repository) GetIncentiveType(ctx context.Context, id int64) (*IncentiveType, error) {
	var t IncentiveType
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM incentive_type WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query incentive type: %w", err)
	}
	return &t, nil
}

// CreateAnswerType inserts an answer type.
func (r *Repository) CreateAnswerType(ctx context.Context, shortName, description string, mostPositive, mostNegative int) (*AnswerType, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO answer_type (short_name, description, most_positive, most_negative) VALUES (?, ?, ?, ?)`,
		shortName, description, mostPositive, mostNegative)
	if err != nil {
		return nil, fmt.Errorf("failed to create answer type: %w", err)
	}
	id, _ := res.LastInsertId()
	return &AnswerType{
		ID: id, ShortName: shortName, Description: description,
		MostPositive: mostPositive, MostNegative: mostNegative,
	}, nil
}

// CreateFactor inserts a factor routed to the given category.
func (r *Repository) CreateFactor(ctx context.Context, name string, category incentive.Category) (*Factor, error) {
	var dID, iID sql.NullInt64
	switch category.Kind {
	case incentive.CategoryDelivery:
		dID = sql.NullInt64{Int64: category.ID, Valid: true}
	case incentive.CategoryIncentive:
		iID = sql.NullInt64{Int64: category.ID, Valid: true}
	default:
		return nil, fmt.Errorf("factor %q has no category routing", name)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO factor (name, d_id, i_id) VALUES (?, ?, ?)`, name, dID, iID)
	if err != nil {
		return nil, fmt.Errorf("failed to create factor: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Factor{ID: id, Name: name, DeliveryModelID: dID, IncentiveTypeID: iID}, nil
}

// CreateSurvey inserts a survey.
func (r *Repository) CreateSurvey(ctx context.Context, name, description string) (*Survey, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO survey (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Survey{ID: id, Name: name, Description: description}, nil
}

// GetSurvey returns one survey, or nil when it does not exist.
func (r *Repository) GetSurvey(ctx context.Context, surveyID int64) (*Survey, error) {
	var s Survey
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM survey WHERE id = ?`, surveyID).
		Scan(&s.ID, &s.Name, &s.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query survey: %w", err)
	}
	return &s, nil
}

// GetAllSurveys returns every survey.
func (r *Repository) GetAllSurveys(ctx context.Context) ([]Survey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM survey ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveys: %w", err)
	}
	defer rows.Close()

	var surveys []Survey
	for rows.Next() {
		var s Survey
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}

// CreateQuestion inserts a question referencing its answer type and factor.
func (r *Repository) CreateQuestion(ctx context.Context, text string, weight int, factorID, answerTypeID int64) (*Question, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO question (question, weight, f_id, a_id) VALUES (?, ?, ?, ?)`,
		text, weight, factorID, answerTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Question{ID: id, Text: text, Weight: weight, FactorID: factorID, AnswerTypeID: answerTypeID}, nil
}

// AddQuestionToSurvey links an existing question to a survey.
func (r *Repository) AddQuestionToSurvey(ctx context.Context, surveyID, questionID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO survey_question (s_id, q_id) VALUES (?, ?)`, surveyID, questionID)
	if err != nil {
		return fmt.Errorf("failed to add question to survey: %w", err)
	}
	return nil
}

// GetSurveyQuestions returns the questions of a survey joined with their
// answer types, ready for form rendering.
func (r *Repository) GetSurveyQuestions(ctx context.Context, surveyID int64) ([]SurveyQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.question, q.weight, COALESCE(q.f_id, 0), q.a_id,
			a.id, a.short_name, a.description, a.most_positive, a.most_negative
		FROM survey_question sq
		JOIN question q ON q.id = sq.q_id
		JOIN answer_type a ON a.id = q.a_id
		WHERE sq.s_id = ?
		ORDER BY q.id`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query survey questions: %w", err)
	}
	defer rows.Close()

	var questions []SurveyQuestion
	for rows.Next() {
		var sq SurveyQuestion
		if err := rows.Scan(
			&sq.Question.ID, &sq.Question.Text, &sq.Question.Weight,
			&sq.Question.FactorID, &sq.Question.AnswerTypeID,
			&sq.AnswerType.ID, &sq.AnswerType.ShortName, &sq.AnswerType.Description,
			&sq.AnswerType.MostPositive, &sq.AnswerType.MostNegative,
		); err != nil {
			return nil, fmt.Errorf("failed to scan survey question: %w", err)
		}
		questions = append(questions, sq)
	}
	return questions, rows.Err()
}

// CreateQuestionAnswer records (or replaces) one respondent's answer to one
// question of a survey.
func (r *Repository) CreateQuestionAnswer(ctx context.Context, surveyID, questionID int64, respondentID, answer string) error {
	stmt, err := r.db.getPreparedStatement("insert_question_answer")
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, surveyID, questionID, respondentID, answer); err != nil {
		return fmt.Errorf("failed to save question answer: %w", err)
	}
	return nil
}

// GetAnsweredQuestions returns every answered question of a respondent with
// the reference data the scorer needs fully joined in, so scoring itself
// performs no I/O.
func (r *Repository) GetAnsweredQuestions(ctx context.Context, respondentID string) ([]incentive.QuestionAnswer, error) {
	stmt, err := r.db.getPreparedStatement("get_answered_questions")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var answers []incentive.QuestionAnswer
	for rows.Next() {
		var (
			qa           incentive.QuestionAnswer
			weight       sql.NullInt64
			mostNegative sql.NullInt64
			mostPositive sql.NullInt64
			factorID     sql.NullInt64
			factorName   sql.NullString
			dID, iID     sql.NullInt64
			answer       sql.NullString
		)
		if err := rows.Scan(
			&qa.Question.ID, &qa.Question.Text, &weight,
			&qa.Question.AnswerType.ID, &qa.Question.AnswerType.ShortName,
			&qa.Question.AnswerType.Description, &mostNegative, &mostPositive,
			&factorID, &factorName, &dID, &iID,
			&answer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan answered question: %w", err)
		}

		if weight.Valid {
			w := int(weight.Int64)
			qa.Question.Weight = &w
		}
		if mostNegative.Valid {
			v := int(mostNegative.Int64)
			qa.Question.AnswerType.MostNegative = &v
		}
		if mostPositive.Valid {
			v := int(mostPositive.Int64)
			qa.Question.AnswerType.MostPositive = &v
		}
		if factorID.Valid {
			qa.Question.Factor.ID = factorID.Int64
			qa.Question.Factor.Name = factorName.String
			qa.Question.Factor.Category = factorCategory(dID, iID)
		}
		if answer.Valid {
			a := answer.String
			qa.Answer = &a
		}
		answers = append(answers, qa)
	}
	return answers, rows.Err()
}

// factorCategory materializes the d_id/i_id xor as a tagged category.
func factorCategory(dID, iID sql.NullInt64) *incentive.Category {
	switch {
	case dID.Valid:
		return &incentive.Category{Kind: incentive.CategoryDelivery, ID: dID.Int64}
	case iID.Valid:
		return &incentive.Category{Kind: incentive.CategoryIncentive, ID: iID.Int64}
	default:
		return nil
	}
}

// GetEmployeeModel returns the persisted configuration of a respondent, or
// (nil, nil) when none has been computed yet.
func (r *Repository) GetEmployeeModel(ctx context.Context, respondentID string) (*incentive.EmployeeModel, error) {
	stmt, err := r.db.getPreparedStatement("get_employee_model")
	if err != nil {
		return nil, err
	}

	var (
		model    incentive.EmployeeModel
		dID, iID sql.NullInt64
	)
	err = stmt.QueryRowContext(ctx, respondentID).Scan(
		&model.RespondentID, &dID, &iID, &model.DeliveryModel, &model.IncentiveType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee model: %w", err)
	}

	model.DeliveryModelID = dID.Int64
	model.IncentiveTypeID = iID.Int64
	return &model, nil
}

// CreateEmployeeModel persists a computed configuration and returns it with
// the option names resolved.
func (r *Repository) CreateEmployeeModel(ctx context.Context, respondentID string, cfg incentive.Configuration) (*incentive.EmployeeModel, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employee_model (respondent_id, d_id, i_id) VALUES (?, ?, ?)
		ON CONFLICT(respondent_id) DO UPDATE SET d_id = excluded.d_id, i_id = excluded.i_id`,
		respondentID, cfg.DeliveryModelID, cfg.IncentiveTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee model: %w", err)
	}

	// Record the grant so the incentive history survives later recomputations.
	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO employee_incentive (respondent_id, i_id, granted_at) VALUES (?, ?, ?)`,
		respondentID, cfg.IncentiveTypeID, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to record incentive grant: %w", err)
	}

	return r.GetEmployeeModel(ctx, respondentID)
}

// RecordSurveyParticipation marks a respondent as having taken part in a
// survey. Repeat submissions are idempotent.
func (r *Repository) RecordSurveyParticipation(ctx context.Context, respondentID string, surveyID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO survey_employee (respondent_id, s_id) VALUES (?, ?)`,
		respondentID, surveyID)
	if err != nil {
		return fmt.Errorf("failed to record survey participation: %w", err)
	}
	return nil
}

// GetAllEmployeeModels returns every persisted configuration.
func (r *Repository) GetAllEmployeeModels(ctx context.Context) ([]incentive.EmployeeModel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT em.respondent_id, COALESCE(em.d_id, 0), COALESCE(em.i_id, 0),
			COALESCE(dm.name, ''), COALESCE(it.name, '')
		FROM employee_model em
		LEFT JOIN delivery_model dm ON dm.id = em.d_id
		LEFT JOIN incentive_type it ON it.id = em.i_id
		ORDER BY em.respondent_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee models: %w", err)
	}
	defer rows.Close()

	var models []incentive.EmployeeModel
	for rows.Next() {
		var m incentive.EmployeeModel
		if err := rows.Scan(&m.RespondentID, &m.DeliveryModelID, &m.IncentiveTypeID,
			&m.DeliveryModel, &m.IncentiveType); err != nil {
			return nil, fmt.Errorf("failed to scan employee model: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// GetAdminByEmail returns the admin account for an email, or nil when the
// email is not an admin.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM admin WHERE email = ?`, email).Scan(&a.ID, &a.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin: %w", err)
	}
	return &a, nil
}

// CreateAdmin inserts an admin account.
func (r *Repository) CreateAdmin(ctx context.Context, email string) (*Admin, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO admin (email) VALUES (?)`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Admin{ID: id, Email: email}, nil
}
