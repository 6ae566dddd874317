package agent

import (
	"context"
	"fmt"
	"time"

	"anoa.com/storybloom/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs registered agents on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	agents []Agent
	log    *logger.Logger
}

func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		agents: make([]Agent, 0),
		log:    log,
	}
}

// RegisterAgent adds agent and schedules it when it has a cron expression.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	s.agents = append(s.agents, agent)

	schedule := agent.GetSchedule()
	if schedule == "" {
		s.log.Info("agent registered on demand", "agent", agent.GetName())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Info("agent job starting", "agent", agent.GetName())
		if err := agent.Execute(context.Background()); err != nil {
			s.log.Error("agent job failed", "agent", agent.GetName(), "error", err)
			return
		}
		s.log.Info("agent job completed", "agent", agent.GetName())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule agent %s: %w", agent.GetName(), err)
	}

	s.log.Info("agent scheduled", "agent", agent.GetName(), "cron", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("agent scheduler started", "agents", len(s.agents))
}

// Stop halts scheduling and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("agent scheduler stopped before running jobs finished")
		return
	}
	s.log.Info("agent scheduler stopped")
}

// RunAgentByName executes a registered agent immediately.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	for _, agent := range s.agents {
		if agent.GetName() == name {
			s.log.Info("agent running on demand", "agent", name)
			return agent.Execute(ctx)
		}
	}
	return fmt.Errorf("agent %q is not registered", name)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	names := make([]string, len(s.agents))
	for i, agent := range s.agents {
		names[i] = agent.GetName()
	}
	return names
}
