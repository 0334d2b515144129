package loadgen

import (
	"fmt"
	"log"

	"github.com/punchlab/punchd/internal/domain/tier"
)

// verifyResults checks the retrieved leaderboard against the board's
// ordering and classification rules.
func verifyResults(config *Config, leaderboard []Entry, positions map[int]int) error {
	log.Println("verifying results...")

	if len(leaderboard) == 0 {
		return fmt.Errorf("no leaderboard entries to verify")
	}

	if err := verifyOrdering(leaderboard); err != nil {
		return err
	}
	if err := verifyLabels(leaderboard); err != nil {
		return err
	}
	if err := verifyPositions(leaderboard, positions); err != nil {
		return err
	}

	displayTopEntries(leaderboard, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyOrdering checks canonical order: score descending, ties kept in
// insertion order which reads as non-increasing scores.
func verifyOrdering(leaderboard []Entry) error {
	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Score > leaderboard[i-1].Score {
			return fmt.Errorf("leaderboard not sorted: entry %d outranks entry %d", i, i-1)
		}
		if leaderboard[i].Score == leaderboard[i-1].Score &&
			leaderboard[i].CreatedAt.Before(leaderboard[i-1].CreatedAt) {
			return fmt.Errorf("tie at score %d not in insertion order", leaderboard[i].Score)
		}
	}
	return nil
}

// verifyLabels checks every stored rank is a recognized label and that
// scores sit inside the representable range.
func verifyLabels(leaderboard []Entry) error {
	for i, entry := range leaderboard {
		if !tier.IsCanonical(string(entry.Rank)) {
			return fmt.Errorf("entry %d carries unknown rank %q", i, entry.Rank)
		}
		if entry.Score < tier.MinScore || entry.Score > tier.MaxScore {
			return fmt.Errorf("entry %d score %d outside the representable range", i, entry.Score)
		}
	}
	return nil
}

// verifyPositions cross-checks sampled positional ranks against the board.
// A score's position is the count of strictly higher scores plus one.
func verifyPositions(leaderboard []Entry, positions map[int]int) error {
	for score, position := range positions {
		expected := 1
		for _, entry := range leaderboard {
			if entry.Score > score {
				expected++
			}
		}
		if position != expected {
			return fmt.Errorf("position for score %d is %d, expected %d", score, position, expected)
		}
	}
	return nil
}

// displayTopEntries shows the top of the retrieved board.
func displayTopEntries(leaderboard []Entry, verbose bool) {
	topN := 10
	if len(leaderboard) < topN {
		topN = len(leaderboard)
	}

	log.Printf("top %d entries:", topN)
	for i := 0; i < topN; i++ {
		entry := leaderboard[i]
		log.Printf("   %d. %s - score: %d rank: %s", i+1, entry.Name, entry.Score, entry.Rank)
	}

	if verbose && len(leaderboard) > 0 {
		sum := 0
		for _, entry := range leaderboard {
			sum += entry.Score
		}
		log.Printf("score statistics: avg %.1f max %d min %d",
			float64(sum)/float64(len(leaderboard)),
			leaderboard[0].Score,
			leaderboard[len(leaderboard)-1].Score)
	}
}
