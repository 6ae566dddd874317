package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	leaderboardDto "anoa.com/storybloom/internal/modules/leaderboard/dto"
	progressionRepo "anoa.com/storybloom/internal/modules/progression/repository"
	"anoa.com/storybloom/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TimeframeAllTime = "all_time"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"

	cacheTTL = time.Minute
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error)
	// Status returns the level standing of one profile with its last-7-days label.
	Status(ctx context.Context, profileID uuid.UUID, totalPoints int) leaderboardDto.GamificationStatus
}

type leaderboardService struct {
	repo        progressionRepo.Repository
	redisClient redis.Cmdable
	thresholds  []int
	log         *logger.Logger
	now         func() time.Time
}

// NewLeaderboardService returns the service. redisClient may be nil, which disables caching.
func NewLeaderboardService(repo progressionRepo.Repository, redisClient redis.Cmdable, thresholds []int, log *logger.Logger) LeaderboardService {
	if log == nil {
		log = logger.Nop()
	}
	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
		thresholds:  thresholds,
		log:         log,
		now:         time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error) {
	if timeframe == "" {
		timeframe = TimeframeAllTime
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d", timeframe, limit)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	var (
		rows []progressionRepo.ProfilePoints
		err  error
	)
	switch timeframe {
	case TimeframeWeekly:
		rows, err = s.repo.TopSince(ctx, s.now().AddDate(0, 0, -7), limit)
	case TimeframeMonthly:
		rows, err = s.repo.TopSince(ctx, s.now().AddDate(0, 0, -30), limit)
	default:
		rows, err = s.repo.TopByTotal(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		weekly := 0
		if timeframe == TimeframeWeekly {
			weekly = int(row.Points)
		}
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			ProfileID:          row.ProfileID.String(),
			DisplayName:        row.DisplayName,
			Position:           i + 1, // 1-based position
			Points:             row.Points,
			GamificationStatus: GetGamificationStatusWithWeekly(row.TotalPoints, weekly, s.thresholds),
		})
	}

	s.toCache(ctx, cacheKey, entries)
	return entries, nil
}

func (s *leaderboardService) Status(ctx context.Context, profileID uuid.UUID, totalPoints int) leaderboardDto.GamificationStatus {
	weekly, err := s.repo.PointsSince(ctx, profileID, s.now().AddDate(0, 0, -7))
	if err != nil {
		s.log.Warn("failed to load weekly points", "profile_id", profileID, "error", err)
		weekly = 0
	}
	return GetGamificationStatusWithWeekly(totalPoints, int(weekly), s.thresholds)
}

func (s *leaderboardService) fromCache(ctx context.Context, key string) ([]leaderboardDto.LeaderboardEntry, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("leaderboard cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var entries []leaderboardDto.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *leaderboardService) toCache(ctx context.Context, key string, entries []leaderboardDto.LeaderboardEntry) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.log.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
}
