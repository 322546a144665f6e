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
	"math"
	"regexp"
	"sort"

	"github.com/Knetic/govaluate"
)

// Names of the base grids that are read from disk.
const (
	YieldVar         = "Yield"
	HarvestedAreaVar = "HarvestedArea"
	PhysicalAreaVar  = "PhysicalArea"
)

// Names of the default derived grids.
const (
	ProductionVar     = "Production"
	NitrogenOutputVar = "NitrogenOutput"
)

// NitrogenContentConst is the name of the constant holding the
// nitrogen mass fraction of harvested wheat.
const NitrogenContentConst = "NitrogenContent"

// DefaultNitrogenContent is the assumed nitrogen mass fraction of
// harvested wheat.
const DefaultNitrogenContent = 0.02

// DefaultDerivedVariables are the variables calculated from the base
// grids in a typical run. Yield is in t/ha and HarvestedArea in ha, so
// Production is in million metric tons (Mt).
var DefaultDerivedVariables = map[string]string{
	ProductionVar:     "Yield * HarvestedArea / 1000000",
	NitrogenOutputVar: "Production * NitrogenContent",
}

// DefaultDerivedUnits are the units of DefaultDerivedVariables.
var DefaultDerivedUnits = map[string]string{
	ProductionVar:     "Mt",
	NitrogenOutputVar: "Mt N",
}

// Deriver calculates derived grids from base grids using expressions.
//
// Expressions may refer to base grids, to constants, and to other
// derived variables; references to derived variables are replaced by
// their defining expressions before evaluation.
//
// Default functions are:
//
// 'log10(x)' and 'exp(x)', and 'max(a, b)' and 'min(a, b)'.
type Deriver struct {
	// Constants are named scalar values that can be used in expressions.
	Constants map[string]float64

	raw       map[string]string
	expanded  map[string]string
	units     map[string]string
	baseVars  []string
	functions map[string]govaluate.ExpressionFunction
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("wheatn: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		x, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("wheatn: argument to function '%s' is %T; it should be a number", name, arg[0])
		}
		return f(x), nil
	}
}

func twoArgs(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 2 {
			return nil, fmt.Errorf("wheatn: got %d arguments for function '%s', but needs 2", len(arg), name)
		}
		a, aok := arg[0].(float64)
		b, bok := arg[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("wheatn: arguments to function '%s' are %T and %T; they should be numbers", name, arg[0], arg[1])
		}
		return f(a, b), nil
	}
}

// NewDeriver parses the expressions in vars, which maps variable names
// to expressions. units holds the units of each variable and may be nil.
// functions are added to, or override, the default functions.
func NewDeriver(vars, units map[string]string, constants map[string]float64,
	functions map[string]govaluate.ExpressionFunction) (*Deriver, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("wheatn: there are no derived variables to calculate")
	}
	d := &Deriver{
		Constants: make(map[string]float64),
		raw:       make(map[string]string),
		expanded:  make(map[string]string),
		units:     make(map[string]string),
		functions: map[string]govaluate.ExpressionFunction{
			"log10": oneArg("log10", math.Log10),
			"exp":   oneArg("exp", math.Exp),
			"max":   twoArgs("max", math.Max),
			"min":   twoArgs("min", math.Min),
		},
	}
	for k, v := range vars {
		d.raw[k] = v
	}
	for k, v := range units {
		d.units[k] = v
	}
	for k, v := range constants {
		d.Constants[k] = v
	}
	for k, f := range functions {
		d.functions[k] = f
	}

	names := d.Names()
	seen := make(map[string]bool)
	for _, name := range names {
		e, err := d.expand(name, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		d.expanded[name] = e
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(e, d.functions)
		if err != nil {
			return nil, fmt.Errorf("wheatn: derived variable %s: %v", name, err)
		}
		for _, v := range expr.Vars() {
			if _, ok := d.Constants[v]; ok || seen[v] {
				continue
			}
			seen[v] = true
			d.baseVars = append(d.baseVars, v)
		}
	}
	sort.Strings(d.baseVars)
	return d, nil
}

// Names returns the sorted names of the derived variables.
func (d *Deriver) Names() []string {
	names := make([]string, 0, len(d.raw))
	for k := range d.raw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// BaseVariables returns the sorted names of the grids that are needed
// to calculate the derived variables.
func (d *Deriver) BaseVariables() []string { return d.baseVars }

// Expression returns the expanded expression for the named variable.
func (d *Deriver) Expression(name string) string { return d.expanded[name] }

// expand returns the expression for name with every reference to
// another derived variable replaced by that variable's expression.
func (d *Deriver) expand(name string, visiting map[string]bool) (string, error) {
	if visiting[name] {
		return "", fmt.Errorf("wheatn: derived variable %s is defined in terms of itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	out := d.raw[name]
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(out, d.functions)
	if err != nil {
		return "", fmt.Errorf("wheatn: derived variable %s: %v", name, err)
	}
	for _, v := range removeDuplicates(expr.Vars()) {
		if _, ok := d.raw[v]; !ok {
			continue
		}
		sub, err := d.expand(v, visiting)
		if err != nil {
			return "", err
		}
		// A variable name is only replaced where it is not part of a
		// longer name. For example 'Area' is not a standalone variable
		// in 'HarvestedArea'.
		re := regexp.MustCompile(`(^|[^A-Za-z0-9_])` + regexp.QuoteMeta(v) + `($|[^A-Za-z0-9_])`)
		for re.MatchString(out) {
			out = re.ReplaceAllString(out, "${1}("+sub+")${2}")
		}
	}
	return out, nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool)
	for _, val := range s {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}

// Derive calculates every derived variable from the base grids in grids,
// which must all share the same geometry. A cell is missing in the
// output if any base grid used by the expression is missing there.
func (d *Deriver) Derive(grids map[string]*Grid) (map[string]*Grid, error) {
	out := make(map[string]*Grid)
	for _, name := range d.Names() {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(d.expanded[name], d.functions)
		if err != nil {
			return nil, fmt.Errorf("wheatn: derived variable %s: %v", name, err)
		}
		var vars []string
		var inputs []*Grid
		for _, v := range removeDuplicates(expr.Vars()) {
			if _, ok := d.Constants[v]; ok {
				continue
			}
			g, ok := grids[v]
			if !ok {
				return nil, fmt.Errorf("wheatn: derived variable %s needs grid %s, which has not been loaded", name, v)
			}
			vars = append(vars, v)
			inputs = append(inputs, g)
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("wheatn: derived variable %s does not depend on any grid", name)
		}

		params := make(govaluate.MapParameters, len(vars)+len(d.Constants))
		for k, v := range d.Constants {
			params[k] = v
		}
		var evalErr error
		g, err := Apply(name, d.units[name], func(v []float64) float64 {
			for i, vv := range v {
				params[vars[i]] = vv
			}
			r, err := expr.Eval(params)
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return math.NaN()
			}
			f, ok := r.(float64)
			if !ok {
				if evalErr == nil {
					evalErr = fmt.Errorf("expression result %v is not a number", r)
				}
				return math.NaN()
			}
			return f
		}, inputs...)
		if err != nil {
			return nil, fmt.Errorf("wheatn: derived variable %s: %v", name, err)
		}
		if evalErr != nil {
			return nil, fmt.Errorf("wheatn: evaluating derived variable %s: %v", name, evalErr)
		}
		out[name] = g
	}
	return out, nil
}
