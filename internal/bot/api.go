// Package bot holds the shared pieces of computer-seat play: difficulty
// gating and random selection. The per-game heuristics live with each
// engine; all randomness flows from the injected source.
package bot

import (
	"math/rand"

	"cardroom/internal/domain"
)

// Difficulty levels for computer seats.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyExpert       = "expert"
)

// PickRandom returns a uniformly random element of moves.
func PickRandom(rng *rand.Rand, moves []domain.Move) (domain.Move, bool) {
	if len(moves) == 0 {
		return domain.Move{}, false
	}
	return moves[rng.Intn(len(moves))], true
}

// ShouldPlayOptimal gates heuristic play by difficulty: beginners
// mostly play at random, experts almost never do.
func ShouldPlayOptimal(rng *rand.Rand, difficulty string) bool {
	var p float64
	switch difficulty {
	case DifficultyExpert:
		p = 0.95
	case DifficultyIntermediate:
		p = 0.6
	default:
		p = 0.25
	}
	return rng.Float64() < p
}
