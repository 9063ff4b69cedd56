package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/frontend"
	"github.com/mwaldhauser/incentiva/internal/incentive"
)

// ListIncentiveTypes returns all incentive types.
func (api *API) ListIncentiveTypes(c *gin.Context) {
	types, err := api.surveys.GetAllIncentiveTypes(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalError("failed to list incentive types", err))
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetEmployeeConfiguration returns the computed configuration for one
// respondent. A respondent without a usable configuration gets 204, not an
// error: the caller is a payroll integration that polls until a configuration
// exists.
func (api *API) GetEmployeeConfiguration(c *gin.Context) {
	respondentID := c.Param("respondentID")
	if respondentID == "" {
		c.Error(apperrors.NewValidationError("respondent id is required", nil))
		return
	}

	start := time.Now()
	model, fromCache, err := api.incentives.EmployeeConfiguration(c.Request.Context(), respondentID)
	if err != nil {
		if errors.Is(err, incentive.ErrNotSurveyed) || errors.Is(err, incentive.ErrIncompleteConfiguration) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Error(err)
		return
	}

	if !fromCache {
		api.metrics.IncrementConfigurationComputed()
	}
	api.logger.ConfigurationLogger(respondentID, fromCache, time.Since(start))

	if frontend.WantsHTML(c) {
		api.pages.HTML(c, http.StatusOK, "configuration.html", gin.H{"Model": model})
		return
	}
	c.JSON(http.StatusOK, model)
}
