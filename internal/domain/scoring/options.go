package scoring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCoefficients replaces the score coefficients. A non-positive weight-gain
// factor keeps the current one.
func WithCoefficients(c Coefficients) Option {
	return func(e *Engine) {
		if c.WeightGainFactor <= 0 {
			c.WeightGainFactor = e.coef.WeightGainFactor
		}
		e.coef = c
	}
}
