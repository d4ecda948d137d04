package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// GroupKind tells how the members of a prerequisite group combine.
type GroupKind string

const (
	// GroupAll requires every member course.
	GroupAll GroupKind = "AND"
	// GroupAny requires at least one member course.
	GroupAny GroupKind = "OR"
)

// ParseGroupKind accepts AND or OR in any case.
func ParseGroupKind(s string) (GroupKind, error) {
	switch GroupKind(strings.ToUpper(strings.TrimSpace(s))) {
	case GroupAll:
		return GroupAll, nil
	case GroupAny:
		return GroupAny, nil
	}
	return "", fmt.Errorf("unknown prerequisite group kind %q", s)
}

// Scan implements sql.Scanner.
func (k *GroupKind) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into GroupKind", src)
	}
	kind, err := ParseGroupKind(raw)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Value implements driver.Valuer.
func (k GroupKind) Value() (driver.Value, error) {
	if _, err := ParseGroupKind(string(k)); err != nil {
		return nil, err
	}
	return string(k), nil
}

// Prerequisite is a simple "course requires prereq" row.
type Prerequisite struct {
	ID       int64     `json:"id" db:"id"`
	CourseID int64     `json:"courseId" db:"course_id"`
	Prereq   CourseRef `json:"prereq"`
}

// PrerequisiteGroup combines member courses with AND/OR logic for one course.
type PrerequisiteGroup struct {
	ID       int64       `json:"id" db:"id"`
	CourseID int64       `json:"courseId" db:"course_id"`
	Kind     GroupKind   `json:"kind" db:"kind"`
	Members  []CourseRef `json:"members"`
}

// Satisfied reports whether the completed course ids meet the group. An empty group is satisfied.
func (g *PrerequisiteGroup) Satisfied(completed map[int64]bool) bool {
	if len(g.Members) == 0 {
		return true
	}
	switch g.Kind {
	case GroupAny:
		for _, m := range g.Members {
			if completed[m.ID] {
				return true
			}
		}
		return false
	default:
		for _, m := range g.Members {
			if !completed[m.ID] {
				return false
			}
		}
		return true
	}
}

// Requirement is the full prerequisite structure of one course: every simple
// prerequisite and every group must hold.
type Requirement struct {
	CourseID int64                `json:"courseId"`
	Simple   []CourseRef          `json:"simple"`
	Groups   []*PrerequisiteGroup `json:"groups"`
}

// Satisfied reports whether the completed course ids meet the whole requirement.
func (r *Requirement) Satisfied(completed map[int64]bool) bool {
	for _, p := range r.Simple {
		if !completed[p.ID] {
			return false
		}
	}
	for _, g := range r.Groups {
		if !g.Satisfied(completed) {
			return false
		}
	}
	return true
}
