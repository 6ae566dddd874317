package handler

import (
	"context"
	"net/http"

	"anoa.com/storybloom/internal/entity"
	achievementDto "anoa.com/storybloom/internal/modules/achievement/dto"
	achievement "anoa.com/storybloom/internal/modules/achievement/service"
	progression "anoa.com/storybloom/internal/modules/progression/service"
	"anoa.com/storybloom/pkg/apperror"
	"anoa.com/storybloom/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Checker unlocks whatever a profile has newly earned.
type Checker interface {
	CheckAchievements(ctx context.Context, profileID uuid.UUID) (*progression.AchievementCheckResult, error)
}

type ProfileAccess interface {
	Authorize(ctx context.Context, userID, profileID uuid.UUID) error
}

type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

type AchievementHandler struct {
	checker  Checker
	access   ProfileAccess
	profiles ProfileReader
}

func NewAchievementHandler(checker Checker, access ProfileAccess, profiles ProfileReader) *AchievementHandler {
	return &AchievementHandler{checker: checker, access: access, profiles: profiles}
}

func (h *AchievementHandler) CheckAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req achievementDto.CheckAchievementsRequest
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

	res, err := h.checker.CheckAchievements(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievementDto.CheckAchievementsResponse{
		Success:           true,
		NewAchievements:   achievementDto.FromDefinitions(res.NewAchievements),
		TotalAchievements: res.TotalAchievements,
	})
}

// ListAchievements returns the whole catalog with the profile's unlock flags.
func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid profile_id", apperror.ErrInvalidInput))
		return
	}
	if err := h.access.Authorize(c.Request.Context(), userID, profileID); err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.profiles.FindByID(c.Request.Context(), profileID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	catalog := achievement.Catalog(profile)
	res := achievementDto.CatalogResponse{
		ProfileID: profileID.String(),
		Total:     len(catalog),
		Items:     make([]achievementDto.CatalogEntry, 0, len(catalog)),
	}
	for _, entry := range catalog {
		if entry.Unlocked {
			res.Unlocked++
		}
		res.Items = append(res.Items, achievementDto.CatalogEntry{
			Achievement: achievementDto.FromDefinition(entry.Definition),
			Unlocked:    entry.Unlocked,
		})
	}

	c.JSON(http.StatusOK, res)
}
