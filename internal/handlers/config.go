package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwaldhauser/incentiva/internal/auth"
	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/incentive"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an admin and sets the session cookie.
func (api *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid login request", err))
		return
	}

	token, err := api.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	auth.SetSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"email": req.Email})
}

// Logout clears the session cookie.
func (api *API) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

type namedRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDeliveryModel adds a delivery model option.
func (api *API) CreateDeliveryModel(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid delivery model", err))
		return
	}
	dm, err := api.surveys.CreateDeliveryModel(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create delivery model", err))
		return
	}
	c.JSON(http.StatusCreated, dm)
}

// CreateIncentiveType adds an incentive type option.
func (api *API) CreateIncentiveType(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid incentive type", err))
		return
	}
	it, err := api.surveys.CreateIncentiveType(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create incentive type", err))
		return
	}
	c.JSON(http.StatusCreated, it)
}

type answerTypeRequest struct {
	ShortName    string `json:"short_name" binding:"required"`
	Description  string `json:"description"`
	MostPositive int    `json:"most_positive"`
	MostNegative int    `json:"most_negative"`
}

// CreateAnswerType adds an answer type. Both endpoints zero marks free text.
func (api *API) CreateAnswerType(c *gin.Context) {
	var req answerTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid answer type", err))
		return
	}
	at, err := api.surveys.CreateAnswerType(c.Request.Context(), req.ShortName, req.Description,
		req.MostPositive, req.MostNegative)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create answer type", err))
		return
	}
	c.JSON(http.StatusCreated, at)
}

type factorRequest struct {
	Name            string `json:"name" binding:"required"`
	DeliveryModelID *int64 `json:"delivery_model_id"`
	IncentiveTypeID *int64 `json:"incentive_type_id"`
}

// CreateFactor adds a factor routed to exactly one category option.
func (api *API) CreateFactor(c *gin.Context) {
	var req factorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid factor", err))
		return
	}
	if (req.DeliveryModelID == nil) == (req.IncentiveTypeID == nil) {
		c.Error(apperrors.NewValidationError(
			"a factor must reference exactly one of delivery_model_id and incentive_type_id", nil))
		return
	}

	ctx := c.Request.Context()
	category := incentive.Category{Kind: incentive.CategoryDelivery}
	if req.DeliveryModelID != nil {
		category.ID = *req.DeliveryModelID
		dm, err := api.surveys.GetDeliveryModel(ctx, category.ID)
		if err != nil {
			c.Error(apperrors.NewInternalError("failed to look up delivery model", err))
			return
		}
		if dm == nil {
			c.Error(apperrors.NewValidationError("unknown delivery model", nil))
			return
		}
	} else {
		category.Kind = incentive.CategoryIncentive
		category.ID = *req.IncentiveTypeID
		it, err := api.surveys.GetIncentiveType(ctx, category.ID)
		if err != nil {
			c.Error(apperrors.NewInternalError("failed to look up incentive type", err))
			return
		}
		if it == nil {
			c.Error(apperrors.NewValidationError("unknown incentive type", nil))
			return
		}
	}

	f, err := api.surveys.CreateFactor(ctx, req.Name, category)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create factor", err))
		return
	}
	c.JSON(http.StatusCreated, f)
}

// CreateSurvey adds a survey.
func (api *API) CreateSurvey(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid survey", err))
		return
	}
	s, err := api.surveys.CreateSurvey(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create survey", err))
		return
	}
	c.JSON(http.StatusCreated, s)
}

type questionRequest struct {
	Text         string `json:"question" binding:"required"`
	Weight       int    `json:"weight" binding:"required"`
	FactorID     int64  `json:"factor_id" binding:"required"`
	AnswerTypeID int64  `json:"answer_type_id" binding:"required"`
	SurveyID     int64  `json:"survey_id" binding:"required"`
}

// CreateQuestion adds a question and attaches it to a survey.
func (api *API) CreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("invalid question", err))
		return
	}

	ctx := c.Request.Context()
	q, err := api.surveys.CreateQuestion(ctx, req.Text, req.Weight, req.FactorID, req.AnswerTypeID)
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to create question", err))
		return
	}
	if err := api.surveys.AddQuestionToSurvey(ctx, req.SurveyID, q.ID); err != nil {
		c.Error(apperrors.NewInternalError("failed to attach question to survey", err))
		return
	}
	c.JSON(http.StatusCreated, q)
}

// ListDeliveryModels returns every delivery model option.
func (api *API) ListDeliveryModels(c *gin.Context) {
	models, err := api.surveys.GetAllDeliveryModels(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to list delivery models", err))
		return
	}
	c.JSON(http.StatusOK, models)
}

// ListEmployees returns every persisted employee configuration.
func (api *API) ListEmployees(c *gin.Context) {
	models, err := api.surveys.GetAllEmployeeModels(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to list employee models", err))
		return
	}
	c.JSON(http.StatusOK, models)
}
