package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type validationErrorBody struct {
	StatusCode int     `json:"statusCode"`
	Code       string  `json:"code"`
	Error      string  `json:"error"`
	Issues     []Issue `json:"issues"`
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func respondValidation(c *gin.Context, issues []Issue) {
	c.JSON(http.StatusBadRequest, validationErrorBody{
		StatusCode: http.StatusBadRequest,
		Code:       "FST_ERR_VALIDATION",
		Error:      http.StatusText(http.StatusBadRequest),
		Issues:     issues,
	})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorBody{
		StatusCode: http.StatusNotFound,
		Code:       "FST_ERR_NOT_FOUND",
		Error:      http.StatusText(http.StatusNotFound),
		Message:    http.StatusText(http.StatusNotFound),
	})
}

// Internal details never reach the client.
func respondInternal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, errorBody{
		StatusCode: http.StatusInternalServerError,
		Error:      http.StatusText(http.StatusInternalServerError),
		Message:    http.StatusText(http.StatusInternalServerError),
	})
}

// NotFound answers unknown routes with the same body as a missing profile.
func NotFound(c *gin.Context) {
	respondNotFound(c)
}
