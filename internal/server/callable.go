package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paws/internal/invitation/domain"
)

type checkInvitationCodeData struct {
	InvitationCode *string `json:"invitationCode"`
}

type checkInvitationCodeRequest struct {
	Data *checkInvitationCodeData `json:"data"`
}

// CheckInvitationCode redeems an invitation code for the authenticated caller.
// An empty code is a lookup miss, not a malformed request.
func (s *Server) CheckInvitationCode(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req checkInvitationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Data == nil || req.Data.InvitationCode == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err := s.validator.CheckInvitationCode(c.Request.Context(), domain.RedeemRequest{
		SubjectID:      caller.SubjectID,
		InvitationCode: *req.Data.InvitationCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": gin.H{}})
}
