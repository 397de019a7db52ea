package linear

// Option configures a LinearRegression or Ridge.
type Option func(*config)

type config struct {
	fitIntercept bool
	positive     bool
	alpha        float64
}

func defaults() config {
	return config{fitIntercept: true, alpha: 1.0}
}

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(c *config) {
		c.fitIntercept = fit
	}
}

// WithPositive constrains the coefficients of a LinearRegression to be
// non-negative. Columns fitted with a negative weight are dropped and the
// rest refitted with the intercept.
func WithPositive(positive bool) Option {
	return func(c *config) {
		c.positive = positive
	}
}

// WithAlpha sets the L2 penalty strength of a Ridge
func WithAlpha(alpha float64) Option {
	return func(c *config) {
		c.alpha = alpha
	}
}
