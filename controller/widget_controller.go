// controller/widget_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/service"
	"github.com/dev-mohitbeniwal/echo-cache/util"
	helper_util "github.com/dev-mohitbeniwal/echo-cache/util/helper"
)

type WidgetController struct {
	widgetService service.IWidgetService
}

func NewWidgetController(widgetService service.IWidgetService) *WidgetController {
	return &WidgetController{
		widgetService: widgetService,
	}
}

// RegisterRoutes registers the API routes
func (wc *WidgetController) RegisterRoutes(r gin.IRouter) {
	widgets := r.Group("/widgets")
	{
		widgets.POST("", wc.CreateWidget)
		widgets.POST("/bulk", wc.BulkCreateWidgets)
		widgets.PUT("/:id", wc.UpdateWidget)
		widgets.DELETE("/:id", wc.DeleteWidget)
		widgets.GET("/:id", wc.GetWidget)
		widgets.GET("", wc.ListWidgets)
		widgets.GET("/by-name/:name", wc.GetWidgetByName)
		widgets.GET("/count", wc.CountWidgets)
		widgets.PUT("/:id/like", wc.LikeWidget)
		widgets.DELETE("/:id/like", wc.UnlikeWidget)
		widgets.GET("/liked", wc.LikedWidgets)
	}
}

// respondWithServiceError maps service errors to HTTP statuses.
func respondWithServiceError(c *gin.Context, fallback string, err error) {
	switch {
	case errors.Is(err, echo_errors.ErrNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Widget not found", err)
	case errors.Is(err, echo_errors.ErrEntityConflict):
		util.RespondWithError(c, http.StatusConflict, "Widget already exists", err)
	case errors.Is(err, echo_errors.ErrInvalidEntityData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid widget data", err)
	case errors.Is(err, echo_errors.ErrDatabaseOperation):
		util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}

// CreateWidget endpoint
func (wc *WidgetController) CreateWidget(c *gin.Context) {
	var widget model.Widget
	if err := c.ShouldBindJSON(&widget); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid widget data", err)
		return
	}
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	created, err := wc.widgetService.CreateWidget(c.Request.Context(), widget, creatorID)
	if err != nil {
		respondWithServiceError(c, "Failed to create widget", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// BulkCreateWidgets endpoint
func (wc *WidgetController) BulkCreateWidgets(c *gin.Context) {
	var widgets []model.Widget
	if err := c.ShouldBindJSON(&widgets); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid widget data", err)
		return
	}
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	created, err := wc.widgetService.BulkCreateWidgets(c.Request.Context(), widgets, creatorID)
	if err != nil {
		respondWithServiceError(c, "Failed to create widgets", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateWidget endpoint
func (wc *WidgetController) UpdateWidget(c *gin.Context) {
	var widget model.Widget
	if err := c.ShouldBindJSON(&widget); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid widget data", err)
		return
	}
	widget.ID = c.Param("id")
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updated, err := wc.widgetService.UpdateWidget(c.Request.Context(), widget, updaterID)
	if err != nil {
		respondWithServiceError(c, "Failed to update widget", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteWidget endpoint
func (wc *WidgetController) DeleteWidget(c *gin.Context) {
	deleterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.widgetService.DeleteWidget(c.Request.Context(), c.Param("id"), deleterID); err != nil {
		respondWithServiceError(c, "Failed to delete widget", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetWidget endpoint
func (wc *WidgetController) GetWidget(c *gin.Context) {
	widget, err := wc.widgetService.GetWidget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, "Failed to get widget", err)
		return
	}

	c.JSON(http.StatusOK, widget)
}

// GetWidgetByName endpoint
func (wc *WidgetController) GetWidgetByName(c *gin.Context) {
	widget, err := wc.widgetService.GetWidgetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondWithServiceError(c, "Failed to get widget", err)
		return
	}

	c.JSON(http.StatusOK, widget)
}

// ListWidgets endpoint: GET /widgets?ids=a,b,c
func (wc *WidgetController) ListWidgets(c *gin.Context) {
	ids := helper_util.GetIDListParam(c, "ids")
	widgets, err := wc.widgetService.ListWidgets(c.Request.Context(), ids)
	if err != nil {
		respondWithServiceError(c, "Failed to list widgets", err)
		return
	}

	c.JSON(http.StatusOK, widgets)
}

// CountWidgets endpoint
func (wc *WidgetController) CountWidgets(c *gin.Context) {
	count, err := wc.widgetService.CountWidgets(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondWithServiceError(c, "Failed to count widgets", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (wc *WidgetController) LikeWidget(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.widgetService.LikeWidget(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondWithServiceError(c, "Failed to like widget", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (wc *WidgetController) UnlikeWidget(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.widgetService.UnlikeWidget(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondWithServiceError(c, "Failed to unlike widget", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LikedWidgets endpoint: GET /widgets/liked?ids=a,b,c
func (wc *WidgetController) LikedWidgets(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	liked, err := wc.widgetService.LikedWidgets(c.Request.Context(), userID, helper_util.GetIDListParam(c, "ids"))
	if err != nil {
		respondWithServiceError(c, "Failed to load likes", err)
		return
	}

	c.JSON(http.StatusOK, liked)
}
