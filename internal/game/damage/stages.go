package damage

const (
	// MinStage and MaxStage bound every stat stage.
	MinStage = -6
	MaxStage = 6
)

// StageFraction returns the multiplier for stage as an integer fraction:
// 2/8, 2/7 ... 2/2 ... 7/2, 8/2.
//
// Precondition: MinStage <= stage <= MaxStage.
func StageFraction(stage int) (num, den int) {
	stage = ClampStage(stage)
	if stage >= 0 {
		return 2 + stage, 2
	}
	return 2, 2 - stage
}

// ApplyStage scales value by the stage fraction with integer truncation.
//
// Postcondition: result >= 1 when value >= 1.
func ApplyStage(value, stage int) int {
	num, den := StageFraction(stage)
	out := value * num / den
	if out < 1 && value >= 1 {
		return 1
	}
	return out
}

// ClampStage pins stage into [MinStage, MaxStage].
func ClampStage(stage int) int {
	if stage < MinStage {
		return MinStage
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// AccuracyThreshold converts a move accuracy percent and the net stage
// (attacker accuracy minus defender evasion) into a hit threshold on the
// 0..255 scale. A draw strictly below the threshold hits.
//
// Postcondition: 0 <= result <= 255.
func AccuracyThreshold(accuracy, netStage int) int {
	base := accuracy * 255 / 100
	num, den := StageFraction(ClampStage(netStage))
	t := base * num / den
	if t > 255 {
		return 255
	}
	if t < 0 {
		return 0
	}
	return t
}
