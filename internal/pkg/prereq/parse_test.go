package prereq

import (
	"testing"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Group
	}{
		{
			name: "empty",
			expr: "   ",
			want: nil,
		},
		{
			name: "single code",
			expr: "cs101",
			want: []Group{{Kind: models.GroupAll, Codes: []string{"CS101"}}},
		},
		{
			name: "conjunction",
			expr: "CS101 AND CS102",
			want: []Group{
				{Kind: models.GroupAll, Codes: []string{"CS101"}},
				{Kind: models.GroupAll, Codes: []string{"CS102"}},
			},
		},
		{
			name: "grouped alternatives",
			expr: "(BIO252 OR BIO253) AND TCHEM212",
			want: []Group{
				{Kind: models.GroupAny, Codes: []string{"BIO252", "BIO253"}},
				{Kind: models.GroupAll, Codes: []string{"TCHEM212"}},
			},
		},
		{
			name: "lower case operators and extra spaces",
			expr: " math101  or math102 ",
			want: []Group{{Kind: models.GroupAny, Codes: []string{"MATH101", "MATH102"}}},
		},
		{
			name: "duplicate alternatives collapse",
			expr: "CS101 OR CS101",
			want: []Group{{Kind: models.GroupAll, Codes: []string{"CS101"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, expr := range []string{"CS101 AND", "OR CS102", "CS101 CS102", "AND"} {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}
