package agents

import (
	"context"
	"fmt"
	"time"

	"anoa.com/storybloom/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// StreakResetter is the part of the streak service the agent drives.
type StreakResetter interface {
	ResetBrokenStreaks(ctx context.Context) (int64, error)
}

// StreakResetConfig configures StreakResetAgent.
type StreakResetConfig struct {
	// Schedule is a cron expression evaluated in UTC.
	Schedule string

	// Timeout bounds one execution.
	Timeout time.Duration

	// RedisKeyPrefix namespaces the once-per-day run marker.
	RedisKeyPrefix string
}

func DefaultStreakResetConfig() StreakResetConfig {
	return StreakResetConfig{
		Schedule:       "5 0 * * *",
		Timeout:        2 * time.Minute,
		RedisKeyPrefix: "agent:streak_reset",
	}
}

// StreakResetAgent zeroes the current streak of every child who missed a day.
// With redis available only one instance runs per UTC day.
type StreakResetAgent struct {
	streaks StreakResetter
	redis   redis.Cmdable
	config  StreakResetConfig
	log     *logger.Logger
	now     func() time.Time
}

func NewStreakResetAgent(streaks StreakResetter, rdb redis.Cmdable, config StreakResetConfig, log *logger.Logger) *StreakResetAgent {
	defaults := DefaultStreakResetConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RedisKeyPrefix == "" {
		config.RedisKeyPrefix = defaults.RedisKeyPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StreakResetAgent{
		streaks: streaks,
		redis:   rdb,
		config:  config,
		log:     log,
		now:     time.Now,
	}
}

func (a *StreakResetAgent) GetName() string {
	return "streak_reset"
}

func (a *StreakResetAgent) GetSchedule() string {
	return a.config.Schedule
}

func (a *StreakResetAgent) Execute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.redis != nil {
		key := fmt.Sprintf("%s:%s", a.config.RedisKeyPrefix, a.now().UTC().Format(time.DateOnly))
		acquired, err := a.redis.SetNX(ctx, key, 1, 26*time.Hour).Result()
		if err != nil {
			a.log.Warn("streak reset marker unavailable, running anyway", "error", err)
		} else if !acquired {
			a.log.Info("streak reset already ran today", "key", key)
			return nil
		}
	}

	n, err := a.streaks.ResetBrokenStreaks(ctx)
	if err != nil {
		return err
	}
	a.log.Info("streak reset finished", "agent", a.GetName(), "profiles_reset", n)
	return nil
}
