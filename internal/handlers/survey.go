package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/frontend"
)

// GetSurvey returns a survey with its questions, as JSON or as the rendered
// survey page.
func (api *API) GetSurvey(c *gin.Context) {
	surveyID, err := strconv.ParseInt(c.Param("surveyID"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("survey id must be numeric", err))
		return
	}

	ctx := c.Request.Context()
	survey, err := api.surveys.GetSurvey(ctx, surveyID)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load survey", err))
		return
	}
	if survey == nil {
		c.Error(apperrors.NewNotFoundError("survey not found"))
		return
	}

	questions, err := api.surveys.GetSurveyQuestions(ctx, surveyID)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load survey questions", err))
		return
	}

	if frontend.WantsHTML(c) {
		api.pages.HTML(c, http.StatusOK, "survey.html", gin.H{
			"Survey":       survey,
			"Questions":    questions,
			"RespondentID": c.Query("respondent"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": survey, "questions": questions})
}

type submitAnswersRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitAnswers stores a respondent's answers to a survey. Accepts the JSON
// body {"answers": {"<questionID>": "<answer>"}} or a form post with one
// q<questionID> field per question. Submissions are rate limited per
// respondent and day.
func (api *API) SubmitAnswers(c *gin.Context) {
	surveyID, err := strconv.ParseInt(c.Param("surveyID"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("survey id must be numeric", err))
		return
	}
	respondentID := c.Param("respondentID")

	result, err := api.limiter.AllowSubmission(c.Request.Context(), respondentID)
	if err == nil && !result.Allowed {
		api.metrics.IncrementRateLimitBlock()
		c.Error(apperrors.NewRateLimitError(strconv.Itoa(int(result.RetryAfter.Seconds()))))
		return
	}

	answers, err := api.parseAnswers(c)
	if err != nil {
		c.Error(err)
		return
	}
	if len(answers) == 0 {
		c.Error(apperrors.NewValidationError("no answers submitted", nil))
		return
	}

	ctx := c.Request.Context()
	for questionID, answer := range answers {
		if err := api.surveys.CreateQuestionAnswer(ctx, surveyID, questionID, respondentID, answer); err != nil {
			c.Error(apperrors.NewInternalError("failed to store answer", err))
			return
		}
	}
	if err := api.surveys.RecordSurveyParticipation(ctx, respondentID, surveyID); err != nil {
		c.Error(apperrors.NewInternalError("failed to record participation", err))
		return
	}

	if frontend.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/incentive/"+respondentID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(answers)})
}

// parseAnswers reads submitted answers from either a JSON or a form body,
// keyed by question id. Blank form fields are skipped; an unanswered question
// is absence, not an empty answer.
func (api *API) parseAnswers(c *gin.Context) (map[int64]string, error) {
	answers := make(map[int64]string)

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req submitAnswersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperrors.NewValidationError("invalid answers body", err)
		}
		for key, answer := range req.Answers {
			questionID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, apperrors.NewValidationError("answer keys must be question ids", err)
			}
			answers[questionID] = answer
		}
		return answers, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, apperrors.NewValidationError("invalid form body", err)
	}
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, "q") || len(values) == 0 || values[0] == "" {
			continue
		}
		questionID, err := strconv.ParseInt(strings.TrimPrefix(key, "q"), 10, 64)
		if err != nil {
			continue
		}
		answers[questionID] = values[0]
	}
	return answers, nil
}
