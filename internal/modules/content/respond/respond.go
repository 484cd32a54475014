// Package respond maps publishing-engine errors onto the API's response
// envelope, so every collection handler surfaces them the same way.
package respond

import (
	"errors"

	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
	"github.com/gin-gonic/gin"
)

// Error writes the HTTP response for an engine or persistence failure. All
// engine errors are recoverable at the request boundary; the admin UI
// re-fetches and shows the message.
func Error(c *gin.Context, err error) {
	var (
		verr     *publishing.ValidationError
		slugErr  *publishing.SlugConflictError
		orderErr *publishing.OrderMismatchError
	)

	switch {
	case errors.Is(err, publishing.ErrInvalidTitle):
		response.UnprocessableEntity(c, "title is required and must contain letters or digits")
	case errors.As(err, &verr):
		response.UnprocessableEntity(c, verr.Error())
	case errors.As(err, &slugErr):
		response.Conflict(c, slugErr.Error()+"; edit the slug field and retry")
	case errors.As(err, &orderErr):
		response.BadRequest(c, err.Error()+"; please refresh and retry")
	case errors.Is(err, publishing.ErrConcurrencyConflict):
		response.Conflict(c, "this list changed underneath you, please retry")
	case publishing.IsNotFound(err):
		response.NotFound(c)
	default:
		response.InternalError(c, err)
	}
}
