package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/NicoMontoya/tennisworld/models"
)

// BuildLeaderboard recomputes a full standings list from the raw predictions
// in scope. The caller supplies a single consistent snapshot of predictions
// and a user directory for display names; users missing from the directory
// get a synthesized placeholder.
//
// Ordering is fully deterministic: points descending, then accuracy
// descending, then user ID ascending. Ranks are dense positions (tied users
// still get adjacent distinct ranks).
func BuildLeaderboard(
	scope models.LeaderboardScope,
	predictions []*models.Prediction,
	users map[int]*models.User,
	now time.Time,
) *models.Leaderboard {
	type tally struct {
		made    int
		correct int
		points  int
	}
	byUser := make(map[int]*tally)
	for _, p := range predictions {
		t, ok := byUser[p.UserID]
		if !ok {
			t = &tally{}
			byUser[p.UserID] = t
		}
		t.made++
		if p.IsCorrect != nil && *p.IsCorrect {
			t.correct++
		}
		t.points += p.PointsEarned
	}

	entries := make([]models.LeaderboardEntry, 0, len(byUser))
	for userID, t := range byUser {
		accuracy := 0.0
		if t.made > 0 {
			accuracy = math.Round(100*100*float64(t.correct)/float64(t.made)) / 100
		}
		name := fmt.Sprintf("User %d", userID)
		if u, ok := users[userID]; ok && u != nil {
			if dn := u.DisplayName(); dn != "" {
				name = dn
			}
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:             userID,
			DisplayName:        name,
			Points:             t.points,
			PredictionsMade:    t.made,
			CorrectPredictions: t.correct,
			AccuracyPercentage: accuracy,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].AccuracyPercentage != entries[j].AccuracyPercentage {
			return entries[i].AccuracyPercentage > entries[j].AccuracyPercentage
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &models.Leaderboard{
		Scope:       scope,
		Entries:     entries,
		GeneratedAt: now,
	}
}
