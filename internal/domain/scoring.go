package domain

// Scoring constants. CalculatePoints stays non-negative for every
// difficulty and 1..MaxTestCasesPassed only while each penalty is below
// its rate; TestPointsNeverNegative guards that.
const (
	MinTestCasesPassed = 1
	MaxTestCasesPassed = 5
)

var (
	ratePerTestCase = map[Difficulty]int{
		DifficultyEasy:   1000,
		DifficultyMedium: 1500,
		DifficultyHard:   2000,
	}
	hiddenViewPenalty = map[Difficulty]int{
		DifficultyEasy:   750,
		DifficultyMedium: 500,
		DifficultyHard:   250,
	}
)

// CalculatePoints returns the point delta of one graded submission.
// Unknown difficulties and a non-positive pass count score 0. The hidden
// test case penalty is applied once, not per test case.
func CalculatePoints(difficulty Difficulty, testCasesPassed int, hiddenViewed bool) int {
	rate, ok := ratePerTestCase[difficulty]
	if !ok || testCasesPassed <= 0 {
		return 0
	}
	points := rate * testCasesPassed
	if hiddenViewed {
		points -= hiddenViewPenalty[difficulty]
	}
	return points
}

// Points evaluates the submission with CalculatePoints.
func (s ScoreSubmission) Points() int {
	return CalculatePoints(s.Difficulty, s.TestCasesPassed, s.HiddenViewed)
}
