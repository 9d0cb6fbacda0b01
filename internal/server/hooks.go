package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/paws/internal/observability/context"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"go.uber.org/zap"
)

type beforeUserCreatedRequest struct {
	Data *struct {
		JWT string `json:"jwt"`
	} `json:"data"`
}

// BeforeUserCreated answers the identity provider's blocking hook. A 200
// allows the account; any error envelope blocks it.
func (s *Server) BeforeUserCreated(c *gin.Context) {
	var req beforeUserCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil || strings.TrimSpace(req.Data.JWT) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	event, err := s.verifier.VerifyHookEvent(ctx, req.Data.JWT)
	if err != nil {
		logger.FromContext(ctx).Warn("hook event rejected", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	ctx = obscontext.WithActor(ctx, obscontext.ActorProvider, event.UserRecord.UID)
	c.Request = c.Request.WithContext(ctx)

	if err := s.gate.BeforeUserCreated(ctx, event.UserRecord.UID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
