/*
Copyright © 2024 the WheatN authors.
This file is part of WheatN.

WheatN is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WheatN is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WheatN.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command wheatn is a command-line interface for the WheatN wheat
// nitrogen analysis.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/wheatn/wheatnutil"
)

func main() {
	if err := wheatnutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
