package progression

import (
	"time"

	"github.com/fitpet-app/fitpet/internal/domain"
)

// StreakState is the player's streak counters.
// A "day" is a calendar day in the player's time zone: 23:58 and 00:02 are
// two different days even though only four minutes passed.
type StreakState struct {
	Current  int          `json:"current"`
	Highest  int          `json:"highest"`
	LastDate *domain.Date `json:"last_date,omitempty"`
}

// StreakOf reads the streak counters off a player.
func StreakOf(p domain.Player) StreakState {
	return StreakState{Current: p.CurrentStreak, Highest: p.HighestStreak, LastDate: p.LastWorkoutDate}
}

// Apply writes the counters back onto a player.
func (s StreakState) Apply(p *domain.Player) {
	p.CurrentStreak = s.Current
	p.HighestStreak = s.Highest
	p.LastWorkoutDate = s.LastDate
}

// StreakUpdate is the outcome of recording one workout.
type StreakUpdate struct {
	State               StreakState `json:"state"`
	IsFirstWorkoutOfDay bool        `json:"is_first_workout_of_day"`
	Extended            bool        `json:"extended"`
	Broken              bool        `json:"broken"`
}

// Record advances the streak for a workout logged at the given instant.
//   - same day as LastDate (or earlier): no change, not first of day
//   - next day, or first workout ever: Current+1
//   - gap of more than one day: Current resets to 1
func (s StreakState) Record(at time.Time, loc *time.Location) StreakUpdate {
	day := domain.DateOf(at, loc)
	next := s

	if s.LastDate != nil {
		gap := day.DaysSince(*s.LastDate)
		if gap <= 0 {
			// Already counted today. Backdated entries never rewrite history.
			return StreakUpdate{State: s}
		}
		if gap > 1 {
			next.Current = 1
			next.LastDate = &day
			next.Highest = max(next.Highest, next.Current)
			return StreakUpdate{State: next, IsFirstWorkoutOfDay: true, Broken: s.Current > 0}
		}
	}

	next.Current++
	next.LastDate = &day
	next.Highest = max(next.Highest, next.Current)
	return StreakUpdate{State: next, IsFirstWorkoutOfDay: true, Extended: true}
}
