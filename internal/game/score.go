// Letter scoring for a single guess against the target word.
//
// Implements the standard Wordle two-pass algorithm so repeated letters
// behave correctly: a target letter can satisfy at most one guess position,
// and exact matches claim their letter before any positional match does.
package game

// Verdict is the per-letter outcome of comparing a guess to the target.
// Values match the wire encoding: absent=0, correct=1, present=2.
type Verdict int

const (
	VerdictAbsent  Verdict = 0
	VerdictCorrect Verdict = 1
	VerdictPresent Verdict = 2
)

// WordLength is the fixed guess/target length.
const WordLength = 5

// Score compares guess to target and returns whether the guess is an exact
// match plus one verdict per letter. Both inputs must already be normalized
// to WordLength uppercase A-Z letters.
//
// Pass 1 marks exact positions correct and counts the remaining target
// letters. Pass 2 resolves the non-correct positions left to right, each
// present verdict consuming one occurrence from the remaining pool.
func Score(guess, target string) (bool, []Verdict) {
	result := make([]Verdict, WordLength)

	var remaining [26]int
	for i := 0; i < WordLength; i++ {
		if guess[i] == target[i] {
			result[i] = VerdictCorrect
		} else {
			remaining[target[i]-'A']++
		}
	}

	correct := 0
	for i := 0; i < WordLength; i++ {
		if result[i] == VerdictCorrect {
			correct++
			continue
		}
		j := int(guess[i] - 'A')
		if j >= 0 && j < 26 && remaining[j] > 0 {
			result[i] = VerdictPresent
			remaining[j]--
		} else {
			result[i] = VerdictAbsent
		}
	}

	return correct == WordLength, result
}

// IsValidWord reports whether s is exactly WordLength uppercase A-Z letters.
func IsValidWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
