package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	seedJobTypes    = []string{"backend", "frontend", "data", "product"}
	seedExperiences = []string{"junior", "mid", "senior"}
)

// SeedTestData resets the database and populates it with demo profiles,
// relation logs and interview feedback.
//
// Behavior:
//  1. Clears every engine table.
//  2. Creates 20 users with hashed passwords; every 5th profile is left incomplete.
//  3. Appends ~60 relation records: ~70% likes, every 4th like answered so it becomes a match.
//  4. Adds passed-interview feedback for matched pairs so levels differ.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"achievements", "feedbacks", "daily_bonus_ledgers", "daily_views", "relation_records", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE relation_records AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('relation_records', 'users')")
	}
	log.Info("cleared existing data")

	// --- Users ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		u := User{
			Username:           fmt.Sprintf("user%d", i),
			Email:              fmt.Sprintf("user%d@example.com", i),
			PasswordHash:       string(hash),
			Active:             true,
			JobType:            seedJobTypes[r.Intn(len(seedJobTypes))],
			ExperienceLevel:    seedExperiences[r.Intn(len(seedExperiences))],
			PracticeTechnical:  r.Intn(2) == 0,
			PracticeBehavioral: r.Intn(2) == 0,
			PracticeCase:       r.Intn(4) == 0,
			ContactWechat:      fmt.Sprintf("wx_user%d", i),
			CreatedAt:          time.Now().Add(-time.Duration(r.Intn(60*24)) * time.Hour),
			UpdatedAt:          time.Now().Add(-time.Duration(r.Intn(40*24)) * time.Hour),
		}
		if !u.HasPracticeTopic() {
			u.PracticeSystemDesign = true
		}
		if i%5 == 0 {
			u.JobType = ""
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, u)
	}
	log.Info("seeded users", "count", len(users))

	// --- Relation logs ---
	seen := make(map[[2]uint64]bool)
	records, likes := 0, 0
	for _, actor := range users {
		for j := 0; j < 3; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == actor.ID {
				continue
			}
			low, high := actor.ID, target.ID
			if low > high {
				low, high = high, low
			}
			if seen[[2]uint64{low, high}] {
				continue
			}
			seen[[2]uint64{low, high}] = true

			first := RelationRecord{FromUserID: actor.ID, ToUserID: target.ID, PairLow: low, PairHigh: high, Seq: 1}
			if r.Intn(100) < 70 {
				first.Action, first.Status = ActionLike, StatusPending
				likes++
			} else {
				first.Action, first.Status = ActionDislike, StatusRejected
			}
			if err := db.Create(&first).Error; err != nil {
				return fmt.Errorf("failed to seed relation: %w", err)
			}
			records++

			if first.Action != ActionLike || likes%4 != 0 {
				continue
			}
			answer := RelationRecord{
				FromUserID: target.ID, ToUserID: actor.ID,
				Action: ActionLike, Status: StatusAccepted,
				PairLow: low, PairHigh: high, Seq: 2,
			}
			if err := db.Create(&answer).Error; err != nil {
				return fmt.Errorf("failed to seed match: %w", err)
			}
			records++

			for k := 0; k < 1+r.Intn(6); k++ {
				fb := Feedback{UserID: actor.ID, PartnerID: target.ID, InterviewStatus: InterviewPassed}
				if err := db.Create(&fb).Error; err != nil {
					return fmt.Errorf("failed to seed feedback: %w", err)
				}
			}
		}
	}
	log.Info("seeded relation records", "count", records)

	return nil
}
