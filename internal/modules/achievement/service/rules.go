package service

import "anoa.com/storybloom/internal/entity"

// Definition is a static, one-time unlockable badge. Predicate must be pure and
// must keep returning true once the fields it reads have only grown.
type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Predicate   func(p *entity.Profile, stats QuizStats) bool
}

func bestStreak(p *entity.Profile) int {
	return max(p.CurrentStreak, p.LongestStreak)
}

// rules is read-only after init and shared by every request.
var rules = []Definition{
	{
		ID: "first_book", Name: "First Book", Icon: "📖",
		Description: "Finish your very first book",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.BooksCompleted) >= 1
		},
	},
	{
		ID: "bookworm", Name: "Bookworm", Icon: "🐛",
		Description: "Finish 5 books",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.BooksCompleted) >= 5
		},
	},
	{
		ID: "library_explorer", Name: "Library Explorer", Icon: "🏛️",
		Description: "Finish 25 books",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.BooksCompleted) >= 25
		},
	},
	{
		ID: "first_masterpiece", Name: "First Masterpiece", Icon: "🖍️",
		Description: "Color your first page",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.PagesColored) >= 1
		},
	},
	{
		ID: "color_artist", Name: "Color Artist", Icon: "🎨",
		Description: "Color 10 pages",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.PagesColored) >= 10
		},
	},
	{
		ID: "rainbow_master", Name: "Rainbow Master", Icon: "🌈",
		Description: "Color 50 pages",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return len(p.PagesColored) >= 50
		},
	},
	{
		ID: "on_a_roll", Name: "On a Roll", Icon: "🔥",
		Description: "Play 3 days in a row",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return bestStreak(p) >= 3
		},
	},
	{
		ID: "week_warrior", Name: "Week Warrior", Icon: "🗓️",
		Description: "Play 7 days in a row",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return bestStreak(p) >= 7
		},
	},
	{
		ID: "monthly_master", Name: "Monthly Master", Icon: "🏅",
		Description: "Play 30 days in a row",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return bestStreak(p) >= 30
		},
	},
	{
		ID: "rising_star", Name: "Rising Star", Icon: "⭐",
		Description: "Reach level 5",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.Level >= 5
		},
	},
	{
		ID: "super_reader", Name: "Super Reader", Icon: "🦸",
		Description: "Reach level 10",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.Level >= 10
		},
	},
	{
		ID: "point_collector", Name: "Point Collector", Icon: "💎",
		Description: "Earn 1,000 points",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.TotalPoints >= 1000
		},
	},
	{
		ID: "point_champion", Name: "Point Champion", Icon: "👑",
		Description: "Earn 5,000 points",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.TotalPoints >= 5000
		},
	},
	{
		ID: "early_bird", Name: "Early Bird", Icon: "🐦",
		Description: "Read before 8 in the morning 5 times",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.EarlyMorningSessions >= 5
		},
	},
	{
		ID: "night_owl", Name: "Night Owl", Icon: "🦉",
		Description: "Enjoy 5 bedtime stories",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.NightSessions >= 5
		},
	},
	{
		ID: "kind_heart", Name: "Kind Heart", Icon: "💖",
		Description: "Cheer on 10 friends' artwork",
		Predicate: func(p *entity.Profile, _ QuizStats) bool {
			return p.TotalLikesGiven >= 10
		},
	},
	{
		ID: "quiz_master", Name: "Quiz Master", Icon: "🧠",
		Description: "Answer 20 quiz questions with at least 90% accuracy",
		Predicate: func(_ *entity.Profile, s QuizStats) bool {
			return s.QuizAccuracy >= 90 && s.QuizzesTotal >= 20
		},
	},
}

