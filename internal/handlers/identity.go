package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esaha/esaha-backend/internal/requestdata"
)

// currentIdentity returns the resolved caller identity or writes a 401 and
// returns nil. Routes behind the auth middleware always have one; the check
// guards against misregistered routes.
func currentIdentity(c *gin.Context) *requestdata.RequestData {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return rd
}
