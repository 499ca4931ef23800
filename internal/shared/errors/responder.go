package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps domain errors to a ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes error responses for gin handlers.
type Responder struct {
	mappers []ErrorMapper
}

// NewResponder builds a responder that consults mappers in order before
// falling back to 500.
func NewResponder(mappers ...ErrorMapper) *Responder {
	return &Responder{mappers: mappers}
}

// Respond sends a ProblemDetail response with proper content type.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.Status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError converts err through the mappers, then falls back to 500.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	for _, mapper := range r.mappers {
		if mapped, ok := mapper(err); ok {
			r.Respond(c, mapped.WithDetail(err.Error()))
			return
		}
	}
	r.Respond(c, ProblemInternal.WithDetail(err.Error()))
}

// Unprocessable sends the 422 field list.
func (r *Responder) Unprocessable(c *gin.Context, fields []FieldError) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationBody{Detail: fields})
}

// MapSentinel builds an ErrorMapper that matches target with errors.Is.
func MapSentinel(target error, problem ProblemDetail) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if errors.Is(err, target) {
			return problem, true
		}
		return ProblemDetail{}, false
	}
}
