package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	invitationservice "github.com/smallbiznis/paws/internal/invitation/service"
	"github.com/smallbiznis/paws/internal/observability/logger"
	"github.com/smallbiznis/paws/internal/providers/pdf"
	"go.uber.org/zap"
)

type generateInvitationCodesRequest struct {
	Count  int  `json:"count"`
	Length int  `json:"length"`
	DryRun bool `json:"dry_run"`
}

type resetInvitationCodesRequest struct {
	Force bool `json:"force"`
}

func (s *Server) GenerateInvitationCodes(c *gin.Context) {
	var req generateInvitationCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.provisioner.Generate(c.Request.Context(), domain.GenerateRequest{
		Count:  req.Count,
		Length: req.Length,
		DryRun: req.DryRun,
		Source: invitationservice.SourceAdmin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.DryRun {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": result})
}

func (s *Server) ListInvitationCodes(c *gin.Context) {
	req, err := parseListCodesQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.provisioner.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ResetInvitationCodes(c *gin.Context) {
	var req resetInvitationCodesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	affected, err := s.provisioner.ResetAll(c.Request.Context(), domain.ResetRequest{Force: req.Force})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reset": affected}})
}

// InvitationCodeSheet renders unused codes as a printable PDF, optionally
// restricted to one batch.
func (s *Server) InvitationCodeSheet(c *gin.Context) {
	ctx := c.Request.Context()
	unused := false
	batchID := strings.TrimSpace(c.Query("batch_id"))

	items, err := s.provisioner.List(ctx, domain.ListCodesRequest{
		BatchID: batchID,
		Used:    &unused,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(items) == 0 {
		AbortWithError(c, domain.NewError(domain.KindNotFound, "No unused invitation codes to export."))
		return
	}

	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code)
	}

	reader, err := s.pdf.GenerateCodeSheet(ctx, pdf.CodeSheet{
		StudyName:   s.cfg.AppName,
		BatchID:     batchID,
		GeneratedAt: time.Now().UTC(),
		Codes:       codes,
	})
	if err != nil {
		logger.FromContext(ctx).Error("render code sheet failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	if reader == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := "invitation-codes.pdf"
	if batchID != "" {
		filename = fmt.Sprintf("invitation-codes-%s.pdf", batchID)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", body)
}

func parseListCodesQuery(c *gin.Context) (domain.ListCodesRequest, error) {
	req := domain.ListCodesRequest{
		BatchID: strings.TrimSpace(c.Query("batch_id")),
	}

	if raw := strings.TrimSpace(c.Query("used")); raw != "" {
		used, err := strconv.ParseBool(raw)
		if err != nil {
			return req, ErrInvalidRequest
		}
		req.Used = &used
	}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return req, ErrInvalidRequest
		}
		req.Limit = limit
	}

	return req, nil
}
