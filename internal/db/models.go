package db

import (
	"time"
)

// Action is the kind of move one user made toward another.
type Action string

const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionCancel  Action = "cancel"
)

// RelationStatus is the status stamped on a relation record when it was appended.
type RelationStatus string

const (
	StatusPending  RelationStatus = "pending"
	StatusAccepted RelationStatus = "accepted"
	StatusRejected RelationStatus = "rejected"
)

// InterviewPassed is the feedback value that earns experience.
const InterviewPassed = "yes"

// User is the profile row. Profile CRUD lives elsewhere; the matching
// engine only reads it.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`

	JobType         string `gorm:"size:64;index"`
	ExperienceLevel string `gorm:"size:32;index"`

	PracticeTechnical    bool `gorm:"not null;default:false"`
	PracticeBehavioral   bool `gorm:"not null;default:false"`
	PracticeCase         bool `gorm:"not null;default:false"`
	PracticeSystemDesign bool `gorm:"not null;default:false"`

	ContactWechat   string `gorm:"size:64"`
	ContactLinkedIn string `gorm:"column:contact_linkedin;size:255"`
	ContactPhone    string `gorm:"size:32"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// HasPracticeTopic reports whether any practice flag is set.
func (u *User) HasPracticeTopic() bool {
	return u.PracticeTechnical || u.PracticeBehavioral || u.PracticeCase || u.PracticeSystemDesign
}

// HasContact reports whether at least one contact channel is filled in.
func (u *User) HasContact() bool {
	return u.ContactWechat != "" || u.ContactLinkedIn != "" || u.ContactPhone != ""
}

// IsComplete is the profile completeness predicate used for eligibility.
func (u *User) IsComplete() bool {
	return u.JobType != "" && u.ExperienceLevel != "" && u.HasPracticeTopic() && u.HasContact()
}

// SharesPracticeTopic reports whether both users have at least one practice flag in common.
func (u *User) SharesPracticeTopic(o *User) bool {
	return (u.PracticeTechnical && o.PracticeTechnical) ||
		(u.PracticeBehavioral && o.PracticeBehavioral) ||
		(u.PracticeCase && o.PracticeCase) ||
		(u.PracticeSystemDesign && o.PracticeSystemDesign)
}

// RelationRecord is one append-only entry of the like/dislike/cancel log.
//
// Records are never updated or deleted. PairLow/PairHigh hold the unordered
// pair (smaller id first) and Seq is the 1-based position of the record in
// that pair's log.
//
// Indexes:
//   - ux_relation_pair_seq(pair_low, pair_high, seq) UNIQUE
//     Two writers appending on the same log snapshot collide here, so the
//     loser re-reads and re-evaluates instead of writing a duplicate.
//   - idx_relation_from_to(from_user_id, to_user_id)
//   - idx_relation_to_status(to_user_id, status)
type RelationRecord struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement"`
	FromUserID uint64         `gorm:"not null;index:idx_relation_from_to,priority:1"`
	ToUserID   uint64         `gorm:"not null;index:idx_relation_from_to,priority:2;index:idx_relation_to_status,priority:1"`
	Action     Action         `gorm:"type:varchar(16);not null"`
	Status     RelationStatus `gorm:"type:varchar(16);not null;index:idx_relation_to_status,priority:2"`
	PairLow    uint64         `gorm:"not null;uniqueIndex:ux_relation_pair_seq,priority:1"`
	PairHigh   uint64         `gorm:"not null;uniqueIndex:ux_relation_pair_seq,priority:2"`
	Seq        uint32         `gorm:"not null;uniqueIndex:ux_relation_pair_seq,priority:3"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

// DailyView records that Viewer was shown ViewedID on Day (YYYY-MM-DD).
type DailyView struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ViewerID  uint64    `gorm:"not null;uniqueIndex:ux_view_viewer_target_day,priority:1;index:idx_view_viewer_day,priority:1"`
	ViewedID  uint64    `gorm:"not null;uniqueIndex:ux_view_viewer_target_day,priority:2"`
	Day       string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_view_viewer_target_day,priority:3;index:idx_view_viewer_day,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DailyBonusLedger holds one user's bonus balance for one day.
// BonusBalance is carried over from the latest earlier row when a day's row
// is first created. BonusUsedToday counts units spent on this day, so the
// day's limit does not shrink as the balance is spent.
type DailyBonusLedger struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	UserID            uint64    `gorm:"not null;uniqueIndex:ux_ledger_user_day,priority:1"`
	Day               string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_ledger_user_day,priority:2"`
	BonusBalance      int       `gorm:"not null;default:0"`
	BonusGrantedToday int       `gorm:"not null;default:0"`
	BonusUsedToday    int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// Feedback is left by UserID about a mock interview held with PartnerID.
type Feedback struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	UserID          uint64    `gorm:"not null;index:idx_feedback_user_status,priority:1"`
	PartnerID       uint64    `gorm:"not null;index"`
	InterviewStatus string    `gorm:"type:varchar(8);not null;index:idx_feedback_user_status,priority:2"`
	Content         string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// Achievement caches the derived experience and level of a user.
type Achievement struct {
	UserID           uint64    `gorm:"primaryKey;autoIncrement:false"`
	ExperiencePoints int       `gorm:"not null;default:0"`
	CurrentLevel     int       `gorm:"not null;default:1"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&User{},
		&RelationRecord{},
		&DailyView{},
		&DailyBonusLedger{},
		&Feedback{},
		&Achievement{},
	}
}

func (User) TableName() string             { return "users" }
func (RelationRecord) TableName() string   { return "relation_records" }
func (DailyView) TableName() string        { return "daily_views" }
func (DailyBonusLedger) TableName() string { return "daily_bonus_ledgers" }
func (Feedback) TableName() string         { return "feedbacks" }
func (Achievement) TableName() string      { return "achievements" }
