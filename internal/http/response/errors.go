package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mindcheck-backend/internal/platform/apierr"
)

// RespondAPIError renders err with the status and code carried by an
// *apierr.Error. Anything else is a 500 whose message is not exposed.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
			RespondError(c, status, ae.Code, errors.New(http.StatusText(status)))
			return
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	_ = c.Error(err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
}
