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

import (
	"math"
	"testing"
)

func TestGaussianLatitudes(t *testing.T) {
	lats := gaussianLatitudes(48)
	if len(lats) != 48 {
		t.Fatalf("expected 48 latitudes, got %d", len(lats))
	}
	// North to south order.
	for i := 1; i < len(lats); i++ {
		if lats[i] >= lats[i-1] {
			t.Errorf("latitudes not decreasing at %d: %g >= %g", i, lats[i], lats[i-1])
		}
	}
	// Symmetric about the equator.
	for i := 0; i < len(lats)/2; i++ {
		j := len(lats) - 1 - i
		if diff := math.Abs(lats[i] + lats[j]); diff > 1e-9 {
			t.Errorf("latitudes %d and %d not symmetric: %g vs %g", i, j, lats[i], lats[j])
		}
	}
	// T31 reference value for the first latitude of a 48-point grid.
	if math.Abs(lats[0]-87.159) > 0.01 {
		t.Errorf("first latitude: got %g, want about 87.159", lats[0])
	}
}

func TestIsGaussianLatitudes(t *testing.T) {
	ref := gaussianLatitudes(180)
	if !isGaussianLatitudes(ref) {
		t.Error("reference 180-point sequence not recognized as Gaussian")
	}

	// South-to-north ordering must match too.
	rev := make([]float64, len(ref))
	for i, v := range ref {
		rev[len(ref)-1-i] = v
	}
	if !isGaussianLatitudes(rev) {
		t.Error("reversed reference sequence not recognized as Gaussian")
	}

	// An evenly spaced 180-point array over the same range is not
	// Gaussian.
	even := make([]float64, 180)
	for i := range even {
		even[i] = 89.5 - float64(i)
	}
	if isGaussianLatitudes(even) {
		t.Error("evenly spaced latitudes misclassified as Gaussian")
	}

	if isGaussianLatitudes([]float64{0}) {
		t.Error("single latitude classified as Gaussian")
	}
}
