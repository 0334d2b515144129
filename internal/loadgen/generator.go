package loadgen

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/punchlab/punchd/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	scoreBandDivisor   = 8
)

// Constants for score generation bands.
const (
	midBandMin     = 3000.0
	midBandRange   = 3000.0
	highBandMin    = 6000.0
	highBandRange  = 2500.0
	lowBandMin     = 0.0
	lowBandRange   = 3000.0
	eliteBandMin   = 8500.0
	eliteBandRange = 1499.0
	floorBandMin   = 0.0
	floorBandRange = 500.0
	upperMidMin    = 5000.0
	upperMidRange  = 2000.0
	lowerMidMin    = 1500.0
	lowerMidRange  = 2000.0
	fullRangeMin   = 0.0
	fullRange      = 9999.0
)

// Constants for score band cases.
const (
	caseMidBand   = 0
	caseHighBand  = 1
	caseLowBand   = 2
	caseEliteBand = 3
	caseFloorBand = 4
	caseUpperMid  = 5
	caseLowerMid  = 6
	caseFullRange = 7
)

// fighterNames seeds the generated display names.
var fighterNames = []string{
	"Rocky", "Dynamite", "Hammer", "Comet", "Tempest",
	"Anvil", "Piston", "Maverick", "Cyclone", "Juggernaut",
}

// punchPhrases feed the judge endpoint.
var punchPhrases = []string{
	"a jab that barely stirs the air",
	"a quick one-two to the body",
	"a hook that rattles the ring posts",
	"an uppercut launched from the knees",
	"a straight that cracks like thunder",
	"a haymaker that splits the clouds",
	"a cross that levels a city block",
	"the final punch at the end of the universe",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateSubmissions creates the configured number of submissions.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating submissions", logger.Int("count", config.NumSubmissions))

	subs := make([]Submission, config.NumSubmissions)
	for i := range subs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		subs[i] = generateSingleSubmission(i, config.PunchShare)
	}

	stats.SubmissionsGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(subs)))

	return subs, nil
}

// generateSingleSubmission creates one submission. A share of submissions
// carry a punch description and are routed through the judge endpoint.
func generateSingleSubmission(index int, punchShare float64) Submission {
	nameIdx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(fighterNames))))
	name := fighterNames[nameIdx.Int64()] + "-" + strconv.Itoa(index)

	if getRandomFloat() < punchShare {
		phraseIdx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(punchPhrases))))
		return Submission{
			Name:        name,
			Description: punchPhrases[phraseIdx.Int64()],
		}
	}

	return Submission{
		Name:  name,
		Score: generateVariedScore(),
	}
}

// generateVariedScore creates a score with a varied band distribution so the
// resulting board exercises every tier.
func generateVariedScore() float64 {
	band, _ := rand.Int(rand.Reader, big.NewInt(scoreBandDivisor))
	switch band.Int64() {
	case caseMidBand:
		return midBandMin + getRandomFloat()*midBandRange
	case caseHighBand:
		return highBandMin + getRandomFloat()*highBandRange
	case caseLowBand:
		return lowBandMin + getRandomFloat()*lowBandRange
	case caseEliteBand:
		return eliteBandMin + getRandomFloat()*eliteBandRange
	case caseFloorBand:
		return floorBandMin + getRandomFloat()*floorBandRange
	case caseUpperMid:
		return upperMidMin + getRandomFloat()*upperMidRange
	case caseLowerMid:
		return lowerMidMin + getRandomFloat()*lowerMidRange
	case caseFullRange:
		return fullRangeMin + getRandomFloat()*fullRange
	default:
		return fullRangeMin + getRandomFloat()*fullRange
	}
}
