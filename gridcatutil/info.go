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

package gridcatutil

import (
	"fmt"
	"io"

	"github.com/spatialmodel/gridcat"
)

// writeCatalog prints a text summary of one catalog.
func writeCatalog(w io.Writer, c *gridcat.Catalog) {
	if c.Institution != "" || c.Model != "" {
		fmt.Fprintf(w, "institution: %s  model: %s\n", c.Institution, c.Model)
	}

	for _, g := range c.Grids {
		fmt.Fprintf(w, "grid %d: %v", g.ID, g.Kind)
		switch {
		case g.NY > 0:
			fmt.Fprintf(w, " %d x %d", g.NX, g.NY)
		case g.NX > 0:
			fmt.Fprintf(w, " %d cells", g.NX)
		}
		if g.Trunc > 0 {
			fmt.Fprintf(w, " T%d", g.Trunc)
		}
		fmt.Fprintln(w)
	}

	for _, za := range c.VerticalAxes {
		fmt.Fprintf(w, "zaxis %d: %v, %d level", za.ID, za.Kind, za.N)
		if za.N != 1 {
			fmt.Fprint(w, "s")
		}
		if za.Units != "" {
			fmt.Fprintf(w, " [%s]", za.Units)
		}
		if len(za.VCT) > 0 {
			fmt.Fprintf(w, ", vct of %d coefficients", len(za.VCT))
		}
		fmt.Fprintln(w)
	}

	if ta := c.TimeAxis; ta != nil {
		fmt.Fprintf(w, "taxis: %v, %d step", ta.Type, ta.N)
		if ta.N != 1 {
			fmt.Fprint(w, "s")
		}
		if len(ta.Steps) > 0 {
			fmt.Fprintf(w, ", first %v", ta.Steps[0])
			if len(ta.Steps) > 1 {
				fmt.Fprintf(w, ", last %v", ta.Steps[len(ta.Steps)-1])
			}
		}
		fmt.Fprintln(w)
	}

	for _, v := range c.Vars {
		fmt.Fprintf(w, "var %s: %v, grid %d, zaxis %d", v.Name, v.Type, v.GridID, v.ZAxisID)
		if v.Units != "" {
			fmt.Fprintf(w, " [%s]", v.Units)
		}
		if v.Code >= 0 {
			fmt.Fprintf(w, " code %d", v.Code)
		}
		if v.Param != "" {
			fmt.Fprintf(w, " param %s", v.Param)
		}
		fmt.Fprintln(w)
	}
}
