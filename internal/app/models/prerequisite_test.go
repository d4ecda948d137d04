package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupKind(t *testing.T) {
	kind, err := ParseGroupKind("and")
	require.NoError(t, err)
	assert.Equal(t, GroupAll, kind)

	kind, err = ParseGroupKind(" OR ")
	require.NoError(t, err)
	assert.Equal(t, GroupAny, kind)

	_, err = ParseGroupKind("XOR")
	assert.Error(t, err)
}

func TestGroupKindScanAndValue(t *testing.T) {
	var kind GroupKind
	require.NoError(t, kind.Scan("OR"))
	assert.Equal(t, GroupAny, kind)

	require.NoError(t, kind.Scan([]byte("AND")))
	assert.Equal(t, GroupAll, kind)

	assert.Error(t, kind.Scan("NOT"))
	assert.Error(t, kind.Scan(42))

	v, err := GroupAny.Value()
	require.NoError(t, err)
	assert.Equal(t, "OR", v)

	_, err = GroupKind("maybe").Value()
	assert.Error(t, err)
}

func refs(ids ...int64) []CourseRef {
	out := make([]CourseRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, CourseRef{ID: id})
	}
	return out
}

func TestPrerequisiteGroupSatisfied(t *testing.T) {
	completed := map[int64]bool{1: true, 3: true}

	assert.True(t, (&PrerequisiteGroup{Kind: GroupAll, Members: refs(1, 3)}).Satisfied(completed))
	assert.False(t, (&PrerequisiteGroup{Kind: GroupAll, Members: refs(1, 2)}).Satisfied(completed))
	assert.True(t, (&PrerequisiteGroup{Kind: GroupAny, Members: refs(2, 3)}).Satisfied(completed))
	assert.False(t, (&PrerequisiteGroup{Kind: GroupAny, Members: refs(2, 4)}).Satisfied(completed))
	assert.True(t, (&PrerequisiteGroup{Kind: GroupAny}).Satisfied(completed))
}

func TestRequirementSatisfied(t *testing.T) {
	// (X OR Y) AND Z with X=1, Y=2, Z=3
	req := &Requirement{
		CourseID: 10,
		Groups: []*PrerequisiteGroup{
			{Kind: GroupAny, Members: refs(1, 2)},
			{Kind: GroupAll, Members: refs(3)},
		},
	}

	assert.False(t, req.Satisfied(map[int64]bool{1: true}))
	assert.True(t, req.Satisfied(map[int64]bool{2: true, 3: true}))

	req.Simple = refs(5)
	assert.False(t, req.Satisfied(map[int64]bool{2: true, 3: true}))
	assert.True(t, req.Satisfied(map[int64]bool{2: true, 3: true, 5: true}))
}

func TestRoleType(t *testing.T) {
	assert.True(t, RoleAdvisor.Valid())
	assert.False(t, RoleType("root").Valid())
	assert.True(t, RoleStudent.In(RoleAdmin, RoleStudent))
	assert.False(t, RoleStudent.In(RoleAdmin, RoleAdvisor))
}
