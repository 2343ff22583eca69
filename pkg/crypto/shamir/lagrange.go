package shamir

import (
	"fmt"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
)

// LagrangeBasisAt computes the Lagrange interpolation basis for the
// evaluation points xs, each basis polynomial evaluated at the point
// at. The returned slice is aligned with xs. The points must be
// pairwise distinct.
func LagrangeBasisAt(f field.Field, xs []field.Element, at field.Element) ([]field.Element, error) {
	basis := make([]field.Element, len(xs))
	for i := range xs {
		val := f.One()
		for j := range xs {
			if j == i {
				continue
			}
			denom := xs[i].Sub(xs[j])
			denomInv, err := denom.Inverse()
			if err != nil {
				return nil, fmt.Errorf("shamir: duplicate evaluation point %s: %w", xs[i], err)
			}
			val = val.Mul(at.Sub(xs[j])).Mul(denomInv)
		}
		basis[i] = val
	}
	return basis, nil
}
