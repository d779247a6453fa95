package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/esaha/esaha-backend/internal/services"
)

type ResourceHandler struct {
	resourceService services.ResourceService
}

func NewResourceHandler(resourceService services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

func (rh *ResourceHandler) queryFromRequest(c *gin.Context) services.ResourceQuery {
	query := services.ResourceQuery{
		Location: c.Query("location"),
		Type:     c.Query("type"),
		Keyword:  c.Query("keyword"),
	}
	if raw := c.Query("distance"); raw != "" {
		if distance, err := strconv.ParseFloat(raw, 64); err == nil {
			query.MaxDistance = distance
		}
	}
	return query
}

func (rh *ResourceHandler) List(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	resources, err := rh.resourceService.GetResources(c.Request.Context(), rd.UserID, rh.queryFromRequest(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (rh *ResourceHandler) Search(c *gin.Context) {
	rh.List(c)
}

func (rh *ResourceHandler) GetByID(c *gin.Context) {
	rd := currentIdentity(c)
	if rd == nil {
		return
	}
	resource, err := rh.resourceService.GetResourceDetails(c.Request.Context(), rd.UserID, c.Param("resource_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}
