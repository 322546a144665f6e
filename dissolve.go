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

package wheatn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/geom"
)

// DissolveMethod specifies how the geometries of regions that share a
// name are merged.
type DissolveMethod int

const (
	// DissolveCollect gathers the member polygons into a single
	// MultiPolygon without modifying them.
	DissolveCollect DissolveMethod = iota

	// DissolveUnion merges the member polygons using polygon clipping,
	// removing shared internal edges.
	DissolveUnion

	// DissolveFirst keeps only the geometry of the first member of each group.
	DissolveFirst
)

func (m DissolveMethod) String() string {
	switch m {
	case DissolveCollect:
		return "collect"
	case DissolveUnion:
		return "union"
	case DissolveFirst:
		return "first"
	default:
		return fmt.Sprintf("DissolveMethod(%d)", int(m))
	}
}

// ParseDissolveMethod parses the name of a DissolveMethod.
func ParseDissolveMethod(s string) (DissolveMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "collect", "":
		return DissolveCollect, nil
	case "union":
		return DissolveUnion, nil
	case "first":
		return DissolveFirst, nil
	default:
		return 0, fmt.Errorf("wheatn: invalid dissolve method %q; valid options are collect, union, and first", s)
	}
}

// Dissolve merges regions that share a name, returning one region per
// distinct name, sorted by name.
func Dissolve(regions Regions, method DissolveMethod) (Regions, error) {
	groups := make(map[string]Regions)
	for _, r := range regions {
		groups[r.Name] = append(groups[r.Name], r)
	}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	o := make(Regions, len(names))
	for i, name := range names {
		members := groups[name]
		var (
			g   geom.Polygonal
			err error
		)
		switch method {
		case DissolveCollect:
			g = collect(members)
		case DissolveUnion:
			g, err = union(members)
		case DissolveFirst:
			g = members[0].Polygonal
		default:
			err = fmt.Errorf("invalid dissolve method %v", method)
		}
		if err != nil {
			return nil, fmt.Errorf("wheatn: dissolving %s: %v", name, err)
		}
		o[i] = &Region{Polygonal: g, Name: name}
	}
	return o, nil
}

func collect(members Regions) geom.Polygonal {
	if len(members) == 1 {
		return members[0].Polygonal
	}
	var mp geom.MultiPolygon
	for _, m := range members {
		mp = append(mp, m.Polygons()...)
	}
	return mp
}

func union(members Regions) (g geom.Polygonal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("polygon union failed: %v", r)
		}
	}()
	g = members[0].Polygonal
	for _, m := range members[1:] {
		g = g.Union(m.Polygonal)
	}
	return g, nil
}
