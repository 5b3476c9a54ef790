package bot

import (
	"math/rand"
	"testing"

	"cardroom/internal/domain"
)

func TestPickRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, ok := PickRandom(rng, nil); ok {
		t.Fatalf("PickRandom on empty slice should report no move")
	}

	moves := []domain.Move{
		{Action: domain.ActionPlay, CardID: "2_clubs"},
		{Action: domain.ActionPlay, CardID: "3_clubs"},
	}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		mv, ok := PickRandom(rng, moves)
		if !ok {
			t.Fatalf("PickRandom returned no move")
		}
		seen[mv.CardID] = true
	}
	if len(seen) != 2 {
		t.Fatalf("PickRandom never chose both candidates: %v", seen)
	}
}

func TestShouldPlayOptimalRates(t *testing.T) {
	tests := []struct {
		difficulty string
		min, max   int // hits out of 10000
	}{
		{DifficultyBeginner, 2000, 3000},
		{DifficultyIntermediate, 5500, 6500},
		{DifficultyExpert, 9000, 9900},
	}

	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			hits := 0
			for i := 0; i < 10000; i++ {
				if ShouldPlayOptimal(rng, tt.difficulty) {
					hits++
				}
			}
			if hits < tt.min || hits > tt.max {
				t.Fatalf("optimal rate = %d/10000, want within [%d, %d]", hits, tt.min, tt.max)
			}
		})
	}
}
