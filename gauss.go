/*
Copyright © 2019 the GridCat authors.
This file is part of GridCat.

GridCat is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridCat is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridCat.  If not, see <http://www.gnu.org/licenses/>.
*/

package gridcat

import "math"

// gaussianLatitudes returns the n reference Gaussian latitudes in
// degrees, ordered north to south. The latitudes are the arcsines of
// the roots of the Legendre polynomial P_n, found by Newton iteration
// on the recurrence.
func gaussianLatitudes(n int) []float64 {
	lats := make([]float64, n)
	for i := 0; i < n; i++ {
		// First-guess root location (Abramowitz & Stegun 22.16.6).
		x := math.Cos(math.Pi * (float64(i) + 0.75) / (float64(n) + 0.5))
		for iter := 0; iter < 100; iter++ {
			pn, dpn := legendre(n, x)
			dx := -pn / dpn
			x += dx
			if math.Abs(dx) < 1e-15 {
				break
			}
		}
		lats[i] = math.Asin(x) * 180 / math.Pi
	}
	return lats
}

// legendre evaluates the Legendre polynomial P_n and its derivative at
// x via the three-term recurrence.
func legendre(n int, x float64) (pn, dpn float64) {
	p0, p1 := 1.0, x
	for k := 2; k <= n; k++ {
		p0, p1 = p1, (float64(2*k-1)*x*p1-float64(k-1)*p0)/float64(k)
	}
	pn = p1
	dpn = float64(n) * (x*p1 - p0) / (x*x - 1)
	return pn, dpn
}

// gaussianLatTolerance is the relative tolerance for matching stored
// latitudes against the reference sequence. The threshold is
// convention-specific and deliberately kept as documented rather than
// derived.
const gaussianLatTolerance = 1.0 / 1000.0

// isGaussianLatitudes reports whether lats matches the reference
// Gaussian latitude sequence for its own length, in either
// north-to-south or south-to-north order.
func isGaussianLatitudes(lats []float64) bool {
	n := len(lats)
	if n < 2 || n >= 10000 {
		return false
	}
	ref := gaussianLatitudes(n)
	if matchesLats(lats, ref) {
		return true
	}
	rev := make([]float64, n)
	for i, v := range ref {
		rev[n-1-i] = v
	}
	return matchesLats(lats, rev)
}

func matchesLats(lats, ref []float64) bool {
	for i := range lats {
		diff := math.Abs(lats[i] - ref[i])
		tol := math.Abs(ref[i]) * gaussianLatTolerance
		if tol == 0 {
			tol = gaussianLatTolerance
		}
		if diff > tol {
			return false
		}
	}
	return true
}
