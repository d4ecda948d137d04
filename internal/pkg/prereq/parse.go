// Package prereq parses the textual prerequisite expressions used in catalog spreadsheets,
// e.g. "CS101" or "(BIO252 OR BIO253) AND TCHEM212".
package prereq

import (
	"fmt"
	"strings"

	"github.com/curriculum/planner/internal/app/models"
)

// Group is one conjunct of an expression: a single required code, or a set of alternatives.
type Group struct {
	Kind  models.GroupKind
	Codes []string
}

var stripParens = strings.NewReplacer("(", " ", ")", " ")

// Parse splits expr on AND, then each part on OR. A part with alternatives becomes an OR group,
// a lone code an AND group with one member. Parentheses are ignored, so the expression is read
// as a conjunction of disjunctions. An empty expression yields no groups.
func Parse(expr string) ([]Group, error) {
	normalized := strings.Join(strings.Fields(stripParens.Replace(strings.ToUpper(expr))), " ")
	if normalized == "" {
		return nil, nil
	}

	var groups []Group
	for _, part := range strings.Split(normalized, " AND ") {
		var codes []string
		seen := make(map[string]bool)
		for _, code := range strings.Split(part, " OR ") {
			code = strings.TrimSpace(code)
			if code == "" || code == "AND" || code == "OR" {
				return nil, fmt.Errorf("prerequisite expression %q has an empty operand", expr)
			}
			if strings.ContainsRune(code, ' ') {
				return nil, fmt.Errorf("prerequisite expression %q: %q is not a single course code", expr, code)
			}
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}

		kind := models.GroupAll
		if len(codes) > 1 {
			kind = models.GroupAny
		}
		groups = append(groups, Group{Kind: kind, Codes: codes})
	}

	return groups, nil
}
