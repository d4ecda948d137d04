package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte("program,course_code,course_name\nBS CS,CS101,Intro\nBS CS,CS102,Data Structures\nBS CS,??,Broken\n"), 0o600))

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut

	err := app.Run([]string{"curriculumctl", "import", "--dry-run", "--file", path})
	require.NoError(t, err)
	assert.Equal(t, "3 rows read from "+path+"\n", out.String())
	assert.Equal(t, "row 4: invalid course code \"??\"\n", errOut.String())
}

func TestImportRequiresFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"curriculumctl", "import"})
	assert.ErrorContains(t, err, "file")
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"curriculumctl", "import", "--dry-run", "--file", path})
	assert.ErrorContains(t, err, "unsupported catalog file type")
}

func TestMigrateDownValidatesSteps(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"curriculumctl", "migrate", "down", "--steps", "0"})
	assert.ErrorContains(t, err, "--steps")
}
