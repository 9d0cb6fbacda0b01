package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paws/internal/authorization"
	"github.com/smallbiznis/paws/internal/identity"
	"github.com/smallbiznis/paws/internal/invitation/domain"
)

// errorPayload is the callable protocol error body.
type errorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrRateLimited        = errors.New("rate_limited")
)

const (
	msgPermissionDenied   = "Permission denied."
	msgInvalidRequest     = "Invalid request."
	msgNotFound           = "Not found."
	msgServiceUnavailable = "Service unavailable."
	msgRateLimited        = "Too many requests."
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	kind, message := classify(err)
	return httpStatus(kind), errorPayload{
		Status:  kind.Status(),
		Message: message,
	}
}

// classify resolves err to a kind and the message safe to show the caller.
// Internal failures always carry the generic message.
func classify(err error) (domain.Kind, string) {
	if err == nil {
		return domain.KindInternal, domain.MsgInternal
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		if domainErr.Kind == domain.KindInternal {
			return domain.KindInternal, domain.MsgInternal
		}
		message := domainErr.Message
		if message == "" {
			message = defaultMessage(domainErr.Kind)
		}
		return domainErr.Kind, message
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrMissingToken),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenExpired),
		errors.Is(err, identity.ErrMissingSubject):
		return domain.KindUnauthenticated, domain.MsgUnauthenticated
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return domain.KindPermissionDenied, msgPermissionDenied
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, identity.ErrUnexpectedEvent):
		return domain.KindInvalidArgument, msgInvalidRequest
	case errors.Is(err, ErrNotFound):
		return domain.KindNotFound, msgNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return domain.KindUnavailable, msgServiceUnavailable
	case errors.Is(err, ErrRateLimited):
		return domain.KindResourceExhausted, msgRateLimited
	default:
		return domain.KindInternal, domain.MsgInternal
	}
}

func defaultMessage(kind domain.Kind) string {
	switch kind {
	case domain.KindUnauthenticated:
		return domain.MsgUnauthenticated
	case domain.KindNotFound:
		return msgNotFound
	case domain.KindPermissionDenied:
		return msgPermissionDenied
	case domain.KindInvalidArgument:
		return msgInvalidRequest
	case domain.KindUnavailable:
		return msgServiceUnavailable
	case domain.KindResourceExhausted:
		return msgRateLimited
	default:
		return kind.Status()
	}
}

func httpStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyExists:
		return http.StatusConflict
	case domain.KindFailedPrecondition, domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindResourceExhausted:
		return http.StatusTooManyRequests
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func classifyErrorForLog(err error) (string, string) {
	kind, _ := classify(err)
	return kind.String(), kind.Status()
}
