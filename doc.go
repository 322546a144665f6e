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

// Package wheatn estimates national wheat production and the nitrogen
// balance of that production from gridded yield and harvested-area data.
//
// A run reads the base grids, derives production and nitrogen output
// grids from them, sums production within national boundaries, joins the
// sums to a table of nitrogen use efficiency (NUE) by country, and
// calculates the nitrogen applied and lost in each country. The steps are
// Stages of an Analysis; package wheatnutil wires them together from a
// configuration file.
package wheatn

// Version is the version of this software.
const Version = "1.0.0"
