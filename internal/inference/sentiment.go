package inference

import (
	"math"
	"strings"
	"unicode"
)

// valence holds word polarity on the VADER scale (-4 to +4). The list is
// limited to words that show up in notes, chats and mail about work.
var valence = map[string]float64{
	"amazing":      2.8,
	"appreciate":   2.1,
	"awesome":      3.1,
	"best":         3.2,
	"calm":         1.3,
	"congrats":     2.4,
	"delighted":    2.9,
	"done":         0.8,
	"easy":         1.9,
	"enjoy":        2.2,
	"excellent":    2.7,
	"excited":      2.1,
	"fine":         0.8,
	"fun":          2.3,
	"glad":         2.0,
	"good":         1.9,
	"great":        3.1,
	"happy":        2.7,
	"helpful":      1.8,
	"hope":         1.9,
	"like":         1.5,
	"love":         3.2,
	"nice":         1.8,
	"perfect":      2.7,
	"pleased":      1.9,
	"ready":        1.0,
	"success":      2.7,
	"thank":        1.5,
	"thanks":       1.9,
	"win":          2.8,
	"wonderful":    2.7,
	"afraid":       -2.2,
	"angry":        -2.3,
	"annoyed":      -1.6,
	"anxious":      -1.0,
	"awful":        -2.0,
	"bad":          -2.5,
	"blocked":      -1.3,
	"broken":       -1.9,
	"complaint":    -1.5,
	"concerned":    -1.3,
	"crash":        -1.7,
	"delay":        -1.3,
	"delayed":      -1.2,
	"disappointed": -1.9,
	"error":        -1.7,
	"fail":         -2.3,
	"failed":       -2.3,
	"failure":      -2.3,
	"frustrated":   -2.1,
	"hard":         -0.4,
	"hate":         -2.7,
	"horrible":     -2.5,
	"issue":        -0.6,
	"late":         -0.9,
	"lost":         -1.3,
	"miss":         -0.6,
	"missed":       -1.2,
	"overdue":      -1.4,
	"pain":         -2.3,
	"problem":      -1.7,
	"sad":          -2.1,
	"sick":         -1.9,
	"sorry":        -0.3,
	"stress":       -1.8,
	"stressed":     -1.4,
	"terrible":     -2.1,
	"tired":        -1.9,
	"upset":        -1.6,
	"worried":      -1.9,
	"worry":        -1.9,
	"worse":        -2.1,
	"worst":        -3.1,
	"wrong":        -2.1,
}

var boosters = map[string]float64{
	"absolutely": 0.293,
	"extremely":  0.293,
	"really":     0.293,
	"so":         0.293,
	"super":      0.293,
	"totally":    0.293,
	"very":       0.293,
	"barely":     -0.293,
	"hardly":     -0.293,
	"slightly":   -0.293,
	"somewhat":   -0.293,
}

var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"cannot":  true,
	"nor":     true,
	"without": true,
}

const (
	negationScale    = -0.74
	exclamationBoost = 0.292
	maxExclamations  = 4
	// alpha approximates the maximum expected raw score.
	alpha = 15
)

// Sentiment returns a VADER-style compound polarity score in [-1, 1] for
// text. Zero means no polar words were found.
func Sentiment(text string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var sum float64
	for i, token := range tokens {
		v, ok := valence[strings.Trim(token, "'")]
		if !ok {
			continue
		}
		if i > 0 {
			if b, ok := boosters[tokens[i-1]]; ok {
				if v > 0 {
					v += b
				} else {
					v -= b
				}
			}
		}
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if isNegation(tokens[j]) {
				v *= negationScale
				break
			}
		}
		sum += v
	}
	if sum == 0 {
		return 0
	}

	bangs := min(strings.Count(text, "!"), maxExclamations)
	if sum > 0 {
		sum += float64(bangs) * exclamationBoost
	} else {
		sum -= float64(bangs) * exclamationBoost
	}

	compound := sum / math.Sqrt(sum*sum+alpha)
	compound = math.Max(-1, math.Min(1, compound))
	return math.Round(compound*10000) / 10000
}

func isNegation(token string) bool {
	return negations[token] || strings.HasSuffix(token, "n't")
}
