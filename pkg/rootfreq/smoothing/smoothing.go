package smoothing

import "math"

// DefaultAlpha is the additive smoothing constant (Jeffreys-style prior).
const DefaultAlpha = 0.5

// Calculator computes additively smoothed root probabilities over a corpus
// with vocabulary size V and Total root tokens.
type Calculator struct {
	alpha float64 // smoothing constant
	vocab float64 // V
	total float64 // total root tokens
}

// NewCalculator creates a calculator. A non-positive alpha falls back to
// DefaultAlpha.
func NewCalculator(alpha float64, vocab int, total int64) *Calculator {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &Calculator{
		alpha: alpha,
		vocab: float64(vocab),
		total: float64(total),
	}
}

// Alpha returns the smoothing constant in use.
func (c *Calculator) Alpha() float64 {
	return c.alpha
}

// QGlobal is the smoothed corpus-wide probability of a root seen g times.
//
// q_global = (g + α) / (total + αV)
func (c *Calculator) QGlobal(g int64) float64 {
	return (float64(g) + c.alpha) / (c.total + c.alpha*c.vocab)
}

// Group binds the calculator to one group with n root tokens.
func (c *Calculator) Group(n int64) Group {
	return Group{
		calc:  c,
		n:     float64(n),
		nElse: c.total - float64(n),
	}
}

// Group computes in-group and out-of-group probabilities for one group.
type Group struct {
	calc  *Calculator
	n     float64 // N_s
	nElse float64 // N_else = total - N_s
}

// N returns the group's token total.
func (g Group) N() float64 { return g.n }

// NElse returns the number of tokens outside the group.
func (g Group) NElse() float64 { return g.nElse }

// P is the smoothed in-group probability of a root counted c times.
//
// p = (c + α) / (N_s + αV)
func (g Group) P(c int64) float64 {
	a := g.calc.alpha
	return (float64(c) + a) / (g.n + a*g.calc.vocab)
}

// QElse is the smoothed out-of-group probability of a root counted c times
// in the group and global times in the corpus.
//
// q_else = (global - c + α) / (N_else + αV)
func (g Group) QElse(c, global int64) float64 {
	a := g.calc.alpha
	return (float64(global-c) + a) / (g.nElse + a*g.calc.vocab)
}

// Ratio is the distinctiveness ratio p / q_else. ok is false when nothing
// lies outside the group, in which case there is no out-of-group baseline.
func (g Group) Ratio(c, global int64) (ratio float64, ok bool) {
	if g.nElse <= 0 {
		return 0, false
	}
	q := g.QElse(c, global)
	if q <= 0 {
		return 0, false
	}
	return g.P(c) / q, true
}

// KL is the root's contribution to KL(P_group || Q_else).
//
// kl = p · ln(p / q_else)
func (g Group) KL(c, global int64) float64 {
	p := g.P(c)
	return p * math.Log(p/g.QElse(c, global))
}

// M is the count-weighted ratio of in-group to global probability.
//
// m = c · p / q_global
func (g Group) M(c, global int64) float64 {
	return float64(c) * g.P(c) / g.calc.QGlobal(global)
}

// Rel returns c/n, or 0 when n is 0.
func Rel(c int64, n float64) float64 {
	if n == 0 {
		return 0
	}
	return float64(c) / n
}
