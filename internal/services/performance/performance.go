// Package performance produces the synthetic valuation series shown on the
// dashboard. The series is cosmetic display data, not part of the risk
// engine; its only contract is determinism, the same portfolio and invested
// amount always render the same curve.
package performance

import (
	"hash/fnv"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Point is one step of the synthetic valuation path.
type Point struct {
	Day   int             `json:"day"`
	Value decimal.Decimal `json:"value"`
}

// Series generates a deterministic pseudo-random walk seeded by the
// portfolio identifier.
type Series struct {
	seed int64
}

// NewSeries returns a generator for the given portfolio.
func NewSeries(portfolioID string) *Series {
	h := fnv.New64a()
	h.Write([]byte(portfolioID))
	return &Series{seed: int64(h.Sum64())}
}

// Points walks n daily steps from the invested amount, drifting at most
// ±2% per step. Repeated calls yield identical output.
func (s *Series) Points(invested decimal.Decimal, n int) []Point {
	rng := rand.New(rand.NewSource(s.seed))

	points := make([]Point, 0, n)
	value := invested
	for day := 1; day <= n; day++ {
		drift := decimal.NewFromFloat((rng.Float64() - 0.5) * 0.04)
		value = value.Add(value.Mul(drift)).Round(2)
		points = append(points, Point{Day: day, Value: value})
	}
	return points
}
