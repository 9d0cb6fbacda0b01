package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paws/internal/identity"
	obscontext "github.com/smallbiznis/paws/internal/observability/context"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	HeaderAuthorization = "Authorization"
	contextCallerKey    = "caller"
)

// CallerAuthRequired verifies the bearer ID token and stores the caller on
// the gin context. The subject id is only ever taken from the token.
func (s *Server) CallerAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader(HeaderAuthorization))
		if raw == "" {
			AbortWithError(c, identity.ErrMissingToken)
			return
		}

		ctx := c.Request.Context()
		caller, err := s.verifier.VerifyIDToken(ctx, raw)
		if err != nil {
			logger.FromContext(ctx).Debug("id token rejected", zap.Error(err))
			AbortWithError(c, err)
			return
		}

		actorType := obscontext.ActorParticipant
		if caller.IsCoordinator() {
			actorType = obscontext.ActorCoordinator
		}
		c.Request = c.Request.WithContext(obscontext.WithActor(ctx, actorType, caller.SubjectID))
		c.Set(contextCallerKey, caller)
		c.Next()
	}
}

func callerFromContext(c *gin.Context) (*identity.Caller, bool) {
	value, ok := c.Get(contextCallerKey)
	if !ok {
		return nil, false
	}
	caller, ok := value.(*identity.Caller)
	if !ok || caller == nil || caller.SubjectID == "" {
		return nil, false
	}
	return caller, true
}

// authorizeAction gates a route on the caller's role through casbin.
func (s *Server) authorizeAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), caller.SubjectID, caller.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
