package handler

import (
	"context"
	"net/http"

	learningPathDto "anoa.com/storybloom/internal/modules/learningpath/dto"
	learningpath "anoa.com/storybloom/internal/modules/learningpath/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileAccess decides whether a caller may act on a child profile.
type ProfileAccess interface {
	Authorize(ctx context.Context, userID, profileID uuid.UUID) error
}

type LearningPathHandler struct {
	service learningpath.Service
	access  ProfileAccess
}

func NewLearningPathHandler(service learningpath.Service, access ProfileAccess) *LearningPathHandler {
	return &LearningPathHandler{service: service, access: access}
}

var errInvalidID = apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrInvalidInput)

func (h *LearningPathHandler) CreatePath(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req learningPathDto.CreatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		response.ResponseError(c, errInvalidID)
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.CreatePath(c.Request.Context(), learningpath.CreatePathInput{
		ProfileID:  profileID,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, learningPathDto.NewPathResponse(created.Path, created.Progress))
}

func (h *LearningPathHandler) GetPath(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	pathID, err := uuid.Parse(c.Param("path_id"))
	if err != nil {
		response.ResponseError(c, errInvalidID)
		return
	}

	found, err := h.service.GetPath(c.Request.Context(), pathID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, found.Path.ProfileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, learningPathDto.NewPathResponse(found.Path, found.Progress))
}

func (h *LearningPathHandler) ListPaths(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profileID, err := uuid.Parse(c.Query("profile_id"))
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "profile_id query parameter is required", apperror.ErrInvalidInput))
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	paths, err := h.service.ListPaths(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data := make([]learningPathDto.PathResponse, 0, len(paths))
	for i := range paths {
		data = append(data, learningPathDto.NewPathResponse(&paths[i], nil))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *LearningPathHandler) Advance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req learningPathDto.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		response.ResponseError(c, errInvalidID)
		return
	}
	pathID, err := uuid.Parse(req.PathID)
	if err != nil {
		response.ResponseError(c, errInvalidID)
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Advance(c.Request.Context(), learningpath.AdvanceInput{
		ProfileID:           profileID,
		PathID:              pathID,
		CompletedActivityID: req.CompletedActivityID,
		Score:               req.Score,
		TimeSpentSeconds:    req.TimeSpentSeconds,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, learningPathDto.NewAdvanceResponse(res))
}
