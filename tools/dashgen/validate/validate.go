// Package validate checks generated Grafana artifacts for broken PromQL
// and references to metrics the application does not export.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Errors fail validation; warnings
// do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation passed.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Dashboard validates every panel query in a built dashboard: each
// expression must parse as PromQL and reference only known metric names.
func Dashboard(dash dashboard.Dashboard, knownMetrics map[string]bool) *Result {
	res := &Result{}

	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			for i := range p.RowPanel.Panels {
				checkPanel(res, &p.RowPanel.Panels[i], knownMetrics)
			}
		}
		if p.Panel != nil {
			checkPanel(res, p.Panel, knownMetrics)
		}
	}

	return res
}

// Rules validates the expressions of every rule in a PrometheusRule group
// set. Recording rule names are added to the known set as they appear, so
// later rules may reference earlier records.
func Rules(groups []RuleGroupExprs, knownMetrics map[string]bool) *Result {
	res := &Result{}

	known := make(map[string]bool, len(knownMetrics))
	for k, v := range knownMetrics {
		known[k] = v
	}

	for _, g := range groups {
		for _, r := range g.Rules {
			if r.Record != "" {
				known[r.Record] = true
			}
		}
	}
	for _, g := range groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			checkExpr(res, fmt.Sprintf("rule %q", name), r.Expr, known)
		}
	}

	return res
}

// RuleGroupExprs is the subset of a rule group needed for validation.
type RuleGroupExprs struct {
	Rules []RuleExpr
}

// RuleExpr is one rule's name and expression.
type RuleExpr struct {
	Record string
	Alert  string
	Expr   string
}

func checkPanel(res *Result, p *dashboard.Panel, knownMetrics map[string]bool) {
	title := "untitled panel"
	if p.Title != nil && *p.Title != "" {
		title = fmt.Sprintf("panel %q", *p.Title)
	}

	if len(p.Targets) == 0 {
		res.warnf("%s has no query targets", title)
		return
	}

	for _, target := range p.Targets {
		expr, err := targetExpr(target)
		if err != nil {
			res.errorf("%s: extracting query expression: %v", title, err)
			continue
		}
		if expr == "" {
			res.warnf("%s has a target with an empty expression", title)
			continue
		}
		checkExpr(res, title, expr, knownMetrics)
	}
}

// targetExpr pulls the expr field out of a built dataquery without
// depending on its concrete type.
func targetExpr(target any) (string, error) {
	raw, err := json.Marshal(target)
	if err != nil {
		return "", fmt.Errorf("marshaling target: %w", err)
	}
	var q struct {
		Expr string `json:"expr"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", fmt.Errorf("unmarshaling target: %w", err)
	}
	return q.Expr, nil
}

func checkExpr(res *Result, context, expr string, knownMetrics map[string]bool) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: invalid PromQL %q: %v", context, expr, err)
		return
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		if vs.Name == "" {
			// Matcher-only selector, nothing to check by name.
			return nil
		}
		if !knownMetrics[vs.Name] {
			res.errorf("%s references unknown metric %q", context, vs.Name)
		}
		return nil
	})
}
