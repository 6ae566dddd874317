package handler

import (
	"context"
	"net/http"
	"strconv"

	progressionDto "anoa.com/storybloom/internal/modules/progression/dto"
	progression "anoa.com/storybloom/internal/modules/progression/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileAccess decides whether a caller may act on a child profile.
type ProfileAccess interface {
	Authorize(ctx context.Context, userID, profileID uuid.UUID) error
}

type ProgressionHandler struct {
	service progression.Service
	access  ProfileAccess
}

func NewProgressionHandler(service progression.Service, access ProfileAccess) *ProgressionHandler {
	return &ProgressionHandler{service: service, access: access}
}

func (h *ProgressionHandler) AwardPoints(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req progressionDto.AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid profile id", apperror.ErrInvalidInput))
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.AwardPoints(c.Request.Context(), progression.AwardRequest{
		ProfileID:    profileID,
		ActivityType: req.ActivityType,
		Metadata:     req.Metadata,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progressionDto.NewAwardPointsResponse(result))
}

func (h *ProgressionHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid profile id", apperror.ErrInvalidInput))
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := h.service.History(c.Request.Context(), profileID, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progressionDto.ActivityHistoryResponse{
		Data:  progressionDto.FromActivityLogs(logs),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *ProgressionHandler) GetPointsTable(c *gin.Context) {
	c.JSON(http.StatusOK, progressionDto.PointsTableResponse{
		Points:          progression.PointsTable(),
		LevelThresholds: h.service.Thresholds(),
	})
}
