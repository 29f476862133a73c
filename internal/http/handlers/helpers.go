package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mindcheck-backend/internal/http/response"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

// uuidParam parses a path parameter, answering 400 itself when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidInput, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
