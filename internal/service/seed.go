package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Kerhoff/eventboard/internal/models"
)

var (
	seedTitles    = []string{"Standup", "Lunch", "Gym", "Coffee chat", "Dentist", "Study group", "Movie night", "Focus block"}
	seedLocations = []string{"", "Office", "Cafe", "Home", "Library", "Downtown"}
	seedColors    = []string{"#4f46e5", "#16a34a", "#dc2626", "#d97706", "#0891b2"}
	seedPeople    = []string{"Alex", "Sam", "Jordan", "Taylor", "Riley", "Casey"}
	seedVis       = []models.Visibility{models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate}
)

// Seed fills the store with n random events spread over the 30 days
// starting at from.
func (s *Service) Seed(ctx context.Context, n int, from time.Time, rng *rand.Rand) error {
	for i := 0; i < n; i++ {
		if _, err := s.CreateEvent(ctx, randomDraft(from, rng)); err != nil {
			return fmt.Errorf("seed event %d: %w", i, err)
		}
	}
	s.logger.Infof("Seeded %d mock events", n)
	return nil
}

func randomDraft(from time.Time, rng *rand.Rand) models.EventDraft {
	d := models.EventDraft{
		Title:      seedTitles[rng.IntN(len(seedTitles))],
		Date:       from.AddDate(0, 0, rng.IntN(30)).Format(models.DateLayout),
		Location:   seedLocations[rng.IntN(len(seedLocations))],
		Visibility: seedVis[rng.IntN(len(seedVis))],
		Color:      seedColors[rng.IntN(len(seedColors))],
		IsDeadTime: rng.IntN(6) == 0,
	}

	if rng.IntN(4) != 0 {
		start := 7 + rng.IntN(12)
		d.StartTime = fmt.Sprintf("%02d:%02d", start, 30*rng.IntN(2))
		d.EndTime = fmt.Sprintf("%02d:%02d", start+1, 30*rng.IntN(2))
	}
	for j, k := 0, rng.IntN(3); j < k; j++ {
		d.Attendees = append(d.Attendees, seedPeople[rng.IntN(len(seedPeople))])
	}
	return d
}
