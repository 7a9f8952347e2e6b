package dice

import "go.uber.org/zap"

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}

// Roller is the battle-scoped RNG service. It wraps a Source, numbers every
// draw, and logs each one at debug level so a replay can be compared draw by
// draw.
//
// Roller itself satisfies Source, so pure helpers that only need Intn can
// take the Roller directly.
type Roller struct {
	src    Source
	logger *zap.Logger
	draws  int
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("dice: NewLoggedRoller precondition violated: src must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// NewSeededRoller is shorthand for a Roller over NewSeededSource(seed).
func NewSeededRoller(seed int64, logger *zap.Logger) *Roller {
	return NewLoggedRoller(NewSeededSource(seed), logger)
}

// Draws returns how many values have been drawn so far.
func (r *Roller) Draws() int { return r.draws }

// Intn draws a value in [0, n) and logs it.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.draws++
	r.logger.Debug("rng draw",
		zap.Int("draw", r.draws),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Chance returns true with probability num/den. It always consumes exactly
// one draw, even when the outcome is certain.
//
// Precondition: den > 0.
func (r *Roller) Chance(num, den int) bool {
	return r.Intn(den) < num
}

// CoinFlip returns true with probability 1/2.
func (r *Roller) CoinFlip() bool {
	return r.Intn(2) == 0
}

// Roll evaluates expr through the Roller so its draws are counted and logged.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r)
	if !expr.Constant() {
		r.logger.Debug("dice roll",
			zap.String("expression", result.Expression),
			zap.Ints("dice", result.Dice),
			zap.Int("modifier", result.Modifier),
			zap.Int("total", result.Total()),
		)
	}
	return result
}

// RollExpr parses expr and rolls it.
//
// Postcondition: Returns the total or a parse error.
func (r *Roller) RollExpr(expr string) (int, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return r.Roll(e).Total(), nil
}
