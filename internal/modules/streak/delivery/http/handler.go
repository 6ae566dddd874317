package handler

import (
	"context"
	"net/http"

	streakDto "anoa.com/storybloom/internal/modules/streak/dto"
	streak "anoa.com/storybloom/internal/modules/streak/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileAccess interface {
	Authorize(ctx context.Context, userID, profileID uuid.UUID) error
}

type StreakHandler struct {
	service streak.Service
	access  ProfileAccess
}

func NewStreakHandler(service streak.Service, access ProfileAccess) *StreakHandler {
	return &StreakHandler{service: service, access: access}
}

func (h *StreakHandler) CheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req streakDto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid profile_id", apperror.ErrInvalidInput))
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CheckIn(c.Request.Context(), streak.CheckInInput{
		ProfileID: profileID,
		LocalHour: req.LocalHour,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, streakDto.NewCheckInResponse(res))
}
