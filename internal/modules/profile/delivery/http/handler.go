package handler

import (
	"net/http"

	profileDto "anoa.com/storybloom/internal/modules/profile/dto"
	profile "anoa.com/storybloom/internal/modules/profile/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input profileDto.CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.profileService.CreateProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profiles, err := h.profileService.ListProfiles(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
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

	res, err := h.profileService.GetProfile(c.Request.Context(), userID, profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
