package session

// Strategy is the coordinator's internal teaching stance: how hard to
// probe the learner's explanation next turn. A closed set with an explicit
// transition function, so an illegal strategy simply cannot be represented.
type Strategy int

const (
	// StrategyOrient opens the session: let the learner frame the topic.
	StrategyOrient Strategy = iota
	// StrategyProbe asks for mechanism and detail.
	StrategyProbe
	// StrategyChallenge pushes edge cases once explanations run strong.
	StrategyChallenge
	// StrategyRemediate backs off to fundamentals after repeated weak turns.
	StrategyRemediate
)

func (s Strategy) String() string {
	switch s {
	case StrategyOrient:
		return "orient"
	case StrategyProbe:
		return "probe"
	case StrategyChallenge:
		return "challenge"
	case StrategyRemediate:
		return "remediate"
	default:
		return "unknown"
	}
}

// Strategy tuning thresholds over the 0-1 turn quality signal.
const (
	orientTurns        = 2   // turns spent orienting before probing
	failureQuality     = 0.4 // below this a turn counts as a failure
	recoverQuality     = 0.6 // remediation ends at this quality
	challengeQuality   = 0.8 // probing escalates at this quality
	maxConsecutiveFail = 2
	maxLeadingPenalty  = 3
)

// nextStrategy computes the strategy for the next turn from the current
// one, the turn's quality signal, and the penalty counters. Returns the
// (possibly unchanged) strategy and the transition reason ("" if no
// change).
func nextStrategy(cur Strategy, turn int, quality float64, consecutiveFailures, leadingPenalty int) (Strategy, string) {
	// Remediation preempts everything else.
	if cur != StrategyRemediate &&
		(consecutiveFailures >= maxConsecutiveFail || leadingPenalty >= maxLeadingPenalty) {
		if consecutiveFailures >= maxConsecutiveFail {
			return StrategyRemediate, "repeated weak explanations"
		}
		return StrategyRemediate, "leaning on leading questions"
	}

	switch cur {
	case StrategyOrient:
		if turn+1 >= orientTurns && quality >= failureQuality {
			return StrategyProbe, "oriented, moving to probing"
		}
	case StrategyProbe:
		if quality >= challengeQuality && consecutiveFailures == 0 {
			return StrategyChallenge, "strong explanation, escalating"
		}
	case StrategyChallenge:
		if quality < failureQuality {
			return StrategyProbe, "challenge missed, easing off"
		}
	case StrategyRemediate:
		if quality >= recoverQuality {
			return StrategyProbe, "recovered fundamentals"
		}
	}
	return cur, ""
}
