package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwaldhauser/incentiva/internal/cache"
	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/frontend"
	"github.com/mwaldhauser/incentiva/internal/studydb"
)

// NewParticipant enrolls a new study participant and sends them into the
// vignette flow.
func (api *API) NewParticipant(c *gin.Context) {
	email := c.PostForm("email")

	user, err := api.studies.CreateUser(c.Request.Context(), email)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create participant", err))
		return
	}

	if frontend.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/study/"+user.UUID)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListVignettes enumerates all vignettes of a study, rendered into their
// presentation texts. Factors may be preset through query parameters: a
// parameter named after a factor fixes it to the given level, an empty value
// forces the factor to absent. The enumeration is cached; identical designs
// are expensive to recompute on every request.
func (api *API) ListVignettes(c *gin.Context) {
	studyID := api.defaultStudyID
	if raw := c.Query("study_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.Error(apperrors.NewValidationError("study_id must be numeric", err))
			return
		}
		studyID = parsed
	}

	study, err := api.studies.GetStudy(c.Request.Context(), studyID)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load study", err))
		return
	}
	if study == nil {
		c.Error(apperrors.NewNotFoundError("study not found"))
		return
	}

	presets := make(map[string]*string)
	for key, values := range c.Request.URL.Query() {
		if key == "study_id" || len(values) == 0 {
			continue
		}
		if values[0] == "" {
			presets[key] = nil
			continue
		}
		value := values[0]
		presets[key] = &value
	}

	rendered, err := api.enumerateVignettes(c, studyID, presets)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// enumerateVignettes runs the generator behind the response cache.
func (api *API) enumerateVignettes(c *gin.Context, studyID int64, presets map[string]*string) (map[string]string, error) {
	key := cache.Key(vignetteCacheKey(studyID, presets))
	if data, ok := api.cache.Get(key); ok {
		api.metrics.IncrementCacheHit()
		var rendered map[string]string
		if err := json.Unmarshal(data, &rendered); err == nil {
			return rendered, nil
		}
		// A corrupt entry falls through to a fresh enumeration.
	}
	api.metrics.IncrementCacheMiss()

	start := time.Now()
	rendered, err := api.generator.Enumerate(c.Request.Context(), studyID, presets)
	if err != nil {
		return nil, err
	}
	api.metrics.AddVignettesGenerated(len(rendered))
	api.logger.VignetteLogger(studyID, len(rendered), time.Since(start))

	if data, err := json.Marshal(rendered); err == nil {
		api.cache.Set(key, data)
	}
	return rendered, nil
}

// vignetteCacheKey builds a deterministic key over the study and presets.
func vignetteCacheKey(studyID int64, presets map[string]*string) string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "vignettes:%d", studyID)
	for _, name := range names {
		if presets[name] == nil {
			fmt.Fprintf(&b, ":%s=", name)
			continue
		}
		fmt.Fprintf(&b, ":%s=%s", name, *presets[name])
	}
	return b.String()
}

// StudyPage renders the next unanswered vignette for a participant. Once every
// vignette is answered the participant moves on to demographics.
func (api *API) StudyPage(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := api.studies.GetUser(ctx, c.Param("uuid"))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load participant", err))
		return
	}
	if user == nil {
		c.Error(apperrors.NewNotFoundError("unknown participant"))
		return
	}

	rendered, err := api.enumerateVignettes(c, api.defaultStudyID, nil)
	if err != nil {
		c.Error(err)
		return
	}

	questions, err := api.studies.GetStudyQuestions(ctx)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load study questions", err))
		return
	}

	answered, err := api.studies.GetAnsweredQuestions(ctx, user.UUID)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load answers", err))
		return
	}
	answersPerVignette := make(map[string]int)
	for _, qa := range answered {
		answersPerVignette[qa.VignetteID]++
	}

	nextID, remaining := "", 0
	for id := range rendered {
		if answersPerVignette[id] >= len(questions) {
			continue
		}
		remaining++
		if nextID == "" {
			nextID = id
		}
	}

	if nextID == "" {
		c.Redirect(http.StatusSeeOther, "/study/"+user.UUID+"/demographics")
		return
	}

	api.pages.HTML(c, http.StatusOK, "study.html", gin.H{
		"UserUUID":     user.UUID,
		"VignetteID":   nextID,
		"VignetteText": rendered[nextID],
		"Questions":    questions,
		"Remaining":    remaining,
	})
}

type studyAnswersRequest struct {
	VignetteID string            `json:"vignette_id" binding:"required"`
	Answers    map[string]string `json:"answers" binding:"required"`
}

// SubmitStudyAnswers stores a participant's answers to one vignette.
func (api *API) SubmitStudyAnswers(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := api.studies.GetUser(ctx, c.Param("uuid"))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load participant", err))
		return
	}
	if user == nil {
		c.Error(apperrors.NewNotFoundError("unknown participant"))
		return
	}

	vignetteID, answers, err := api.parseStudyAnswers(c)
	if err != nil {
		c.Error(err)
		return
	}

	for questionID, answer := range answers {
		if err := api.studies.AddQuestionAnswer(ctx, user.UUID, questionID, vignetteID, answer); err != nil {
			c.Error(apperrors.NewInternalError("failed to store answer", err))
			return
		}
	}

	if frontend.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/study/"+user.UUID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(answers)})
}

// parseStudyAnswers reads the vignette id and answers from a JSON or form
// body.
func (api *API) parseStudyAnswers(c *gin.Context) (string, map[int64]string, error) {
	answers := make(map[int64]string)

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req studyAnswersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", nil, apperrors.NewValidationError("invalid answers body", err)
		}
		for key, answer := range req.Answers {
			questionID, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return "", nil, apperrors.NewValidationError("answer keys must be question ids", err)
			}
			answers[questionID] = answer
		}
		return req.VignetteID, answers, nil
	}

	vignetteID := c.PostForm("vignette_id")
	if vignetteID == "" {
		return "", nil, apperrors.NewValidationError("vignette_id is required", nil)
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
	if len(answers) == 0 {
		return "", nil, apperrors.NewValidationError("no answers submitted", nil)
	}
	return vignetteID, answers, nil
}

// DemographicsPage renders the demographics form.
func (api *API) DemographicsPage(c *gin.Context) {
	api.pages.HTML(c, http.StatusOK, "demographics.html", gin.H{"UserUUID": c.Param("uuid")})
}

// SubmitDemographics stores a participant's demographic data.
func (api *API) SubmitDemographics(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := api.studies.GetUser(ctx, c.Param("uuid"))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load participant", err))
		return
	}
	if user == nil {
		c.Error(apperrors.NewNotFoundError("unknown participant"))
		return
	}

	var d studydb.Demographics
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&d); err != nil {
			c.Error(apperrors.NewValidationError("invalid demographics body", err))
			return
		}
	} else {
		d.Age, _ = strconv.Atoi(c.PostForm("age"))
		d.Gender = c.PostForm("gender")
		d.Education = c.PostForm("education")
		d.ZipCode = c.PostForm("zip_code")
		d.Country = c.PostForm("country")
		d.EmploymentStatus = c.PostForm("employment_status")
		d.AvgCurrentIncome = c.PostForm("avg_current_income")
	}
	d.UserUUID = user.UUID

	if err := api.studies.AddDemographics(ctx, d); err != nil {
		c.Error(apperrors.NewInternalError("failed to store demographics", err))
		return
	}

	if frontend.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/study/"+user.UUID+"/feedback")
		return
	}
	c.Status(http.StatusNoContent)
}

// FeedbackPage renders the feedback form.
func (api *API) FeedbackPage(c *gin.Context) {
	api.pages.HTML(c, http.StatusOK, "feedback.html", gin.H{"UserUUID": c.Param("uuid")})
}

type feedbackRequest struct {
	Feedback01 string `json:"feedback01"`
	Feedback02 string `json:"feedback02"`
	Feedback03 string `json:"feedback03"`
	// ContactEmail is optional and stored as personal data, separate from the
	// anonymous study results.
	ContactEmail string `json:"contact_email"`
}

// SubmitFeedback stores a participant's free-text feedback and finishes the
// flow.
func (api *API) SubmitFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := api.studies.GetUser(ctx, c.Param("uuid"))
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to load participant", err))
		return
	}
	if user == nil {
		c.Error(apperrors.NewNotFoundError("unknown participant"))
		return
	}

	var req feedbackRequest
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.NewValidationError("invalid feedback body", err))
			return
		}
	} else {
		req.Feedback01 = c.PostForm("feedback01")
		req.Feedback02 = c.PostForm("feedback02")
		req.Feedback03 = c.PostForm("feedback03")
		req.ContactEmail = c.PostForm("contact_email")
	}

	if err := api.studies.AddFeedback(ctx, user.UUID, req.Feedback01, req.Feedback02, req.Feedback03); err != nil {
		c.Error(apperrors.NewInternalError("failed to store feedback", err))
		return
	}

	if req.ContactEmail != "" {
		if err := api.studies.AddPersonalData(ctx, user.UUID, "contact_email", req.ContactEmail); err != nil {
			c.Error(apperrors.NewInternalError("failed to store contact email", err))
			return
		}
	}

	if frontend.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/study/"+user.UUID+"/done")
		return
	}
	c.Status(http.StatusNoContent)
}

// DonePage renders the closing page of the study flow.
func (api *API) DonePage(c *gin.Context) {
	api.pages.HTML(c, http.StatusOK, "done.html", nil)
}
