package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/frontend"
	"github.com/mwaldhauser/incentiva/internal/monitoring"
)

// Index renders the landing page listing the available surveys.
func (api *API) Index(c *gin.Context) {
	surveys, err := api.surveys.GetAllSurveys(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to list surveys", err))
		return
	}
	if frontend.WantsHTML(c) {
		api.pages.HTML(c, http.StatusOK, "index.html", gin.H{"Surveys": surveys})
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": surveys})
}

// RegisterRoutes attaches every endpoint to the router.
func RegisterRoutes(r *gin.Engine, api *API, healthChecks map[string]func() error) {
	r.GET("/", api.Index)
	r.GET("/health", monitoring.HealthHandler(healthChecks))
	r.GET("/metrics", monitoring.MetricsHandler(api.metrics))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	incentiveGroup := r.Group("/incentive")
	{
		incentiveGroup.GET("/", api.ListIncentiveTypes)
		incentiveGroup.GET("/:respondentID", api.GetEmployeeConfiguration)
	}

	configGroup := r.Group("/config")
	{
		configGroup.POST("/login", api.Login)
		configGroup.POST("/logout", api.Logout)

		admin := configGroup.Group("", api.auth.RequireAdmin())
		{
			admin.POST("/surveys", api.CreateSurvey)
			admin.POST("/questions", api.CreateQuestion)
			admin.POST("/answer-types", api.CreateAnswerType)
			admin.POST("/factors", api.CreateFactor)
			admin.GET("/delivery-models", api.ListDeliveryModels)
			admin.POST("/delivery-models", api.CreateDeliveryModel)
			admin.POST("/incentive-types", api.CreateIncentiveType)
			admin.GET("/employees", api.ListEmployees)
		}
	}

	surveyGroup := r.Group("/survey")
	{
		surveyGroup.GET("/:surveyID", api.GetSurvey)
		surveyGroup.POST("/:surveyID/:respondentID/answers", api.SubmitAnswers)
	}

	studyGroup := r.Group("/study")
	{
		studyGroup.POST("/new", api.NewParticipant)
		studyGroup.GET("/vignettes", api.ListVignettes)
		studyGroup.GET("/:uuid", api.StudyPage)
		studyGroup.POST("/:uuid/answers", api.SubmitStudyAnswers)
		studyGroup.GET("/:uuid/demographics", api.DemographicsPage)
		studyGroup.POST("/:uuid/demographics", api.SubmitDemographics)
		studyGroup.GET("/:uuid/feedback", api.FeedbackPage)
		studyGroup.POST("/:uuid/feedback", api.SubmitFeedback)
		studyGroup.GET("/:uuid/done", api.DonePage)
	}
}
