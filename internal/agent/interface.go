package agent

import "context"

// Agent is a background job the Scheduler can run on a cron schedule or on demand.
//
// Implementations:
//   - StreakResetAgent: zeroes streaks of children who skipped a day
type Agent interface {
	// GetName returns a unique name used for logging and RunAgentByName.
	GetName() string

	// GetSchedule returns a cron expression (e.g. "5 0 * * *").
	// An empty string registers the agent as on-demand only.
	GetSchedule() string

	// Execute runs the agent's job once.
	Execute(ctx context.Context) error
}
