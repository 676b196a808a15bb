package match

import (
	"sort"
	"time"

	"github.com/oggyb/mockmatch/internal/db"
)

// Bucket is the priority class of a candidate. Lower sorts first.
type Bucket int

const (
	BucketInvited Bucket = iota
	BucketOverlap
	BucketExperienceMatch
	BucketJobMatch
	BucketOther
)

func (b Bucket) String() string {
	switch b {
	case BucketInvited:
		return "invited"
	case BucketOverlap:
		return "overlap"
	case BucketExperienceMatch:
		return "experience_match"
	case BucketJobMatch:
		return "job_match"
	default:
		return "other"
	}
}

// Candidate is one ranked entry.
type Candidate struct {
	User             db.User
	Bucket           Bucket
	Score            int
	ExperiencePoints int
	Level            int
	// Invited is true when the candidate is waiting on the requester's answer.
	Invited bool
}

// RankInput holds everything ranking needs; ranking itself never touches the store.
type RankInput struct {
	Requester  db.User
	Candidates []db.User
	// Invitations marks candidates with an unanswered pending like toward the requester.
	Invitations map[uint64]bool
	// Experience maps candidate id to experience points; missing means 0.
	Experience map[uint64]int
	Now        time.Time
}

// Classify puts a candidate in the first bucket it matches.
func Classify(requester, candidate *db.User, invited bool) Bucket {
	overlap := requester.SharesPracticeTopic(candidate)
	switch {
	case invited && overlap:
		return BucketInvited
	case overlap:
		return BucketOverlap
	case candidate.ExperienceLevel != "" && candidate.ExperienceLevel == requester.ExperienceLevel:
		return BucketExperienceMatch
	case candidate.JobType != "" && candidate.JobType == requester.JobType:
		return BucketJobMatch
	default:
		return BucketOther
	}
}

// Score is the composite freshness/engagement score within a bucket.
func Score(rules Rules, candidate *db.User, experience int, now time.Time) int {
	score := experience * rules.ExperienceWeight

	sinceUpdate := now.Sub(candidate.UpdatedAt)
	switch {
	case sinceUpdate <= rules.RecentActivity:
		score += rules.RecentBonus
	case sinceUpdate <= rules.ActiveActivity:
		score += rules.ActiveBonus
	}

	if now.Sub(candidate.CreatedAt) <= rules.NewUserWindow {
		score += rules.NewUserBonus
	}
	return score
}

// Rank orders candidates by bucket, then score descending, then user id
// ascending. The same input always yields the same order.
func Rank(rules Rules, in RankInput) []Candidate {
	out := make([]Candidate, 0, len(in.Candidates))
	for i := range in.Candidates {
		c := &in.Candidates[i]
		invited := in.Invitations[c.ID]
		exp := in.Experience[c.ID]
		out = append(out, Candidate{
			User:             *c,
			Bucket:           Classify(&in.Requester, c, invited),
			Score:            Score(rules, c, exp, in.Now),
			ExperiencePoints: exp,
			Level:            LevelFor(exp, rules.LevelThresholds),
			Invited:          invited,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].User.ID < out[j].User.ID
	})
	return out
}

// LevelFor returns the level of the highest threshold not above points.
// thresholds must be sorted ascending; below the first threshold the level is 1.
func LevelFor(points int, thresholds []Threshold) int {
	level := 1
	for _, th := range thresholds {
		if points < th.MinPoints {
			break
		}
		level = th.Level
	}
	return level
}
