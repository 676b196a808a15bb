package match

import (
	"fmt"
	"time"

	"github.com/oggyb/mockmatch/internal/config"
)

// Threshold grants Level once a user reaches MinPoints experience.
type Threshold struct {
	MinPoints int
	Level     int
}

// Rules are the tunable constants of the engine.
type Rules struct {
	// BaseQuota is the number of candidates anyone may act on per day.
	BaseQuota int

	// BonusCap bounds the accumulated bonus balance.
	BonusCap int

	// RoundRecycleSlack: a viewer enters the second round once they have
	// viewed at least (eligible users - RoundRecycleSlack) distinct others.
	// With 1 the viewer's own profile is the only one they never see.
	RoundRecycleSlack int

	// LevelThresholds must be sorted by MinPoints ascending.
	LevelThresholds []Threshold

	ExperienceWeight int
	RecentActivity   time.Duration
	RecentBonus      int
	ActiveActivity   time.Duration
	ActiveBonus      int
	NewUserWindow    time.Duration
	NewUserBonus     int

	// AppendRetries bounds re-evaluation after losing an append race.
	AppendRetries int

	// Location decides where a day starts and ends.
	Location *time.Location
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		BaseQuota:         4,
		BonusCap:          6,
		RoundRecycleSlack: 1,
		LevelThresholds: []Threshold{
			{MinPoints: 0, Level: 1},
			{MinPoints: 1, Level: 2},
			{MinPoints: 5, Level: 3},
			{MinPoints: 10, Level: 4},
			{MinPoints: 15, Level: 5},
		},
		ExperienceWeight: 100,
		RecentActivity:   7 * 24 * time.Hour,
		RecentBonus:      70,
		ActiveActivity:   30 * 24 * time.Hour,
		ActiveBonus:      50,
		NewUserWindow:    7 * 24 * time.Hour,
		NewUserBonus:     30,
		AppendRetries:    3,
		Location:         time.UTC,
	}
}

// RulesFromConfig overlays non-zero config values on DefaultRules.
func RulesFromConfig(c config.MatchConfig) (Rules, error) {
	r := DefaultRules()
	if c.BaseQuota > 0 {
		r.BaseQuota = c.BaseQuota
	}
	if c.BonusCap > 0 {
		r.BonusCap = c.BonusCap
	}
	if c.RoundRecycleSlack > 0 {
		r.RoundRecycleSlack = c.RoundRecycleSlack
	}
	if c.AppendRetries > 0 {
		r.AppendRetries = c.AppendRetries
	}
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return Rules{}, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
		}
		r.Location = loc
	}
	return r, nil
}

// day formats t as the ledger day key in the rules' location.
func (r Rules) day(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.DateOnly)
}
