package match

import (
	"time"

	"github.com/oggyb/mockmatch/internal/db"
)

const defaultPageSize = 20

// CandidateView is what a requester sees of a candidate. Contact details
// are withheld until the pair is matched.
type CandidateView struct {
	UserID           uint64   `json:"user_id"`
	Username         string   `json:"username"`
	JobType          string   `json:"job_type"`
	ExperienceLevel  string   `json:"experience_level"`
	PracticeTopics   []string `json:"practice_topics"`
	Bucket           string   `json:"bucket"`
	Score            int      `json:"score"`
	ExperiencePoints int      `json:"experience_points"`
	Level            int      `json:"level"`
	Invited          bool     `json:"invited"`
}

// Contact holds the channels a matched partner can be reached on.
type Contact struct {
	Wechat   string `json:"wechat,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Partner is an accepted match.
type Partner struct {
	UserID          uint64    `json:"user_id"`
	Username        string    `json:"username"`
	JobType         string    `json:"job_type"`
	ExperienceLevel string    `json:"experience_level"`
	PracticeTopics  []string  `json:"practice_topics"`
	Contact         Contact   `json:"contact"`
	MatchedAt       time.Time `json:"matched_at,omitzero"`
}

// PartnerPage is one page of accepted matches.
type PartnerPage struct {
	Partners      []Partner `json:"partners"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// QuotaStatus is the user's quota position for one day.
type QuotaStatus struct {
	Day               string `json:"day"`
	BaseQuota         int    `json:"base_quota"`
	BonusBalance      int    `json:"bonus_balance"`
	BonusGrantedToday int    `json:"bonus_granted_today"`
	BonusUsedToday    int    `json:"bonus_used_today"`
	DailyLimit        int    `json:"daily_limit"`
	UsedToday         int    `json:"used_today"`
	Remaining         int    `json:"remaining"`
}

// AchievementView is the exposed form of an achievement.
type AchievementView struct {
	ExperiencePoints int `json:"experience_points"`
	Level            int `json:"level"`
}

var likeMessages = map[LikeOutcome]string{
	LikePending:        "like sent, waiting for a response",
	LikeMatched:        "it's a match",
	LikeAlreadyLiked:   "already liked, waiting for a response",
	LikeAlreadyMatched: "already matched",
}

var dislikeMessages = map[DislikeOutcome]string{
	DislikeRecorded: "skipped",
	DislikeCanceled: "like withdrawn",
	DislikeAlready:  "already skipped",
}

func practiceTopics(u *db.User) []string {
	topics := make([]string, 0, 4)
	if u.PracticeTechnical {
		topics = append(topics, "technical")
	}
	if u.PracticeBehavioral {
		topics = append(topics, "behavioral")
	}
	if u.PracticeCase {
		topics = append(topics, "case")
	}
	if u.PracticeSystemDesign {
		topics = append(topics, "system_design")
	}
	return topics
}

func newCandidateView(c Candidate) CandidateView {
	return CandidateView{
		UserID:           c.User.ID,
		Username:         c.User.Username,
		JobType:          c.User.JobType,
		ExperienceLevel:  c.User.ExperienceLevel,
		PracticeTopics:   practiceTopics(&c.User),
		Bucket:           c.Bucket.String(),
		Score:            c.Score,
		ExperiencePoints: c.ExperiencePoints,
		Level:            c.Level,
		Invited:          c.Invited,
	}
}

func newPartner(u *db.User) Partner {
	return Partner{
		UserID:          u.ID,
		Username:        u.Username,
		JobType:         u.JobType,
		ExperienceLevel: u.ExperienceLevel,
		PracticeTopics:  practiceTopics(u),
		Contact: Contact{
			Wechat:   u.ContactWechat,
			LinkedIn: u.ContactLinkedIn,
			Phone:    u.ContactPhone,
		},
	}
}

func newAchievementView(a db.Achievement) AchievementView {
	return AchievementView{ExperiencePoints: a.ExperiencePoints, Level: a.CurrentLevel}
}
