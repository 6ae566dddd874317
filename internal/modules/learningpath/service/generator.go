package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/storybloom/internal/agent/providers"
	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/sanitize"
)

const (
	SourceTemplate = "template"
	SourceLLM      = "llm"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// GenerateInput describes the path a parent asked for.
type GenerateInput struct {
	Topic      string
	Difficulty string
	ChildAge   *int
}

// GeneratedPath is a titled activity sequence ready to be stored.
type GeneratedPath struct {
	Title      string
	Source     string
	Activities []entity.PathActivity
}

type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*GeneratedPath, error)
}

// TemplateGenerator builds the same five-step path for every topic.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(ctx context.Context, input GenerateInput) (*GeneratedPath, error) {
	topic := input.Topic
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}
	minutes := 5
	if difficulty == DifficultyHard {
		minutes = 10
	}

	return &GeneratedPath{
		Title:  fmt.Sprintf("Adventures in %s", topic),
		Source: SourceTemplate,
		Activities: []entity.PathActivity{
			{
				ID: "read-intro", Type: "story", Required: true,
				Title:            fmt.Sprintf("Story time: discovering %s", topic),
				Description:      fmt.Sprintf("Read a short story that introduces %s.", topic),
				Difficulty:       difficulty,
				EstimatedMinutes: minutes,
			},
			{
				ID: "quiz-check", Type: "quiz", Required: true,
				Title:            "Quick check",
				Description:      "Answer a few questions about the story.",
				Difficulty:       difficulty,
				EstimatedMinutes: minutes,
				BranchingOptions: []entity.BranchOption{
					{Condition: entity.ConditionScoreHigh, NextActivityID: "color-create"},
					{Condition: entity.ConditionScoreLow, NextActivityID: "review"},
				},
			},
			{
				ID: "review", Type: "story", Required: false,
				Title:            fmt.Sprintf("Let's look at %s again", topic),
				Description:      "A gentler retelling with pictures.",
				Difficulty:       DifficultyEasy,
				EstimatedMinutes: minutes,
				UnlockCondition:  entity.ConditionScoreLow,
			},
			{
				ID: "color-create", Type: "coloring", Required: true,
				Title:            fmt.Sprintf("Color your own %s", topic),
				Description:      "Bring a page to life with your favourite colors.",
				Difficulty:       difficulty,
				EstimatedMinutes: minutes * 2,
			},
			{
				ID: "quiz-challenge", Type: "quiz", Required: true,
				Title:            fmt.Sprintf("%s challenge", topic),
				Description:      "Show everything you learned.",
				Difficulty:       difficulty,
				EstimatedMinutes: minutes,
			},
		},
	}, nil
}

// LLMGenerator drafts paths with a language model and falls back to another
// Generator when the model fails or returns an unusable sequence.
type LLMGenerator struct {
	provider providers.LLMProvider
	fallback Generator
	log      *logger.Logger
}

func NewLLMGenerator(provider providers.LLMProvider, fallback Generator, log *logger.Logger) *LLMGenerator {
	if fallback == nil {
		fallback = TemplateGenerator{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LLMGenerator{provider: provider, fallback: fallback, log: log}
}

type llmPath struct {
	Title      string                `json:"title"`
	Activities []entity.PathActivity `json:"activities"`
}

func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*GeneratedPath, error) {
	var draft llmPath
	if err := g.provider.GenerateStructured(ctx, buildPrompt(input), &draft); err != nil {
		g.log.Warn("llm path generation failed, using template", "topic", input.Topic, "error", err)
		return g.fallback.Generate(ctx, input)
	}

	activities := cleanActivities(draft.Activities)
	if err := ValidateActivities(activities); err != nil {
		g.log.Warn("llm returned an invalid path, using template", "topic", input.Topic, "error", err)
		return g.fallback.Generate(ctx, input)
	}

	title := sanitize.Text(draft.Title)
	if utf8.RuneCountInString(title) > MaxTitleLength {
		g.log.Warn("llm returned an overlong title, using template", "topic", input.Topic, "length", len(title))
		return g.fallback.Generate(ctx, input)
	}
	if title == "" {
		title = fmt.Sprintf("Adventures in %s", input.Topic)
	}

	return &GeneratedPath{
		Title:      title,
		Source:     SourceLLM,
		Activities: activities,
	}, nil
}

func cleanActivities(in []entity.PathActivity) []entity.PathActivity {
	out := make([]entity.PathActivity, 0, len(in))
	for _, a := range in {
		a.ID = strings.TrimSpace(a.ID)
		a.Title = sanitize.Text(a.Title)
		a.Description = sanitize.Text(a.Description)
		a.Type = strings.ToLower(strings.TrimSpace(a.Type))
		out = append(out, a)
	}
	return out
}

func buildPrompt(input GenerateInput) string {
	age := "young children"
	if input.ChildAge != nil {
		age = fmt.Sprintf("a %d year old child", *input.ChildAge)
	}
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}

	return fmt.Sprintf(`
You design short learning paths for %s in a reading and coloring app.
Topic: %s
Difficulty: %s

Rules:
1. Return 4 to 7 activities. Each has a unique short "id" (kebab-case), a "type" (story, quiz, coloring or activity), a "title", a "description", "difficulty", "estimated_minutes" and "required".
2. Quizzes may add "branching_options": [{"condition": "score_high" | "score_medium" | "score_low", "next_activity_id": "<id of a later activity>"}].
3. Keep the language friendly, simple and safe for children.
4. Output MUST be JSON: {"title": "...", "activities": [...]}
`, age, input.Topic, difficulty)
}
