package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc"
)

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	_, err = root.ExecuteC()
	return buf.String(), err
}

func useSQLite(t *testing.T) {
	t.Setenv("EVENTSVC_DATABASE_DRIVER", "sqlite3")
	t.Setenv("EVENTSVC_DATABASE_FILE", filepath.Join(t.TempDir(), "eventsvc.db"))
}

func TestCMD(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "")
	assert.Nil(t, err)
	assert.NotNil(t, output)
}

func TestVersion(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "version")
	assert.Nil(t, err)
	assert.Equal(t, "eventsvc "+eventsvc.VERSION+" ("+eventsvc.COMMIT+")\n", output)
}

func TestDatabase(t *testing.T) {
	useSQLite(t)

	output, err := executeCommand(NewRootCmd(), "db", "status")
	require.NoError(t, err)
	assert.Equal(t, "Summary:\n  Current version: 0\n  Dirty: false\n  Latest version: 1\n  Pending: 1\n", output)

	output, err = executeCommand(NewRootCmd(), "db", "up")
	require.NoError(t, err)
	assert.Equal(t, "database is up-to-date\n", output)

	// runs up again
	output, err = executeCommand(NewRootCmd(), "db", "up")
	require.NoError(t, err)
	assert.Equal(t, "database is up-to-date\n", output)

	output, err = executeCommand(NewRootCmd(), "db", "status")
	require.NoError(t, err)
	assert.Equal(t, "Summary:\n  Current version: 1\n  Dirty: false\n  Latest version: 1\n  Pending: 0\n", output)

	output, err = executeCommand(NewRootCmd(), "db", "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "resetting database...\ndatabase successfully reset\n", output)

	output, err = executeCommand(NewRootCmd(), "db", "status", "-q")
	require.NoError(t, err)
	assert.True(t, strings.Contains(output, "Current version: 0"))
}

func TestDatabaseResetCanceled(t *testing.T) {
	useSQLite(t)

	root := NewRootCmd()
	root.SetIn(strings.NewReader("n\n"))
	output, err := executeCommand(root, "db", "reset")
	assert.EqualError(t, err, "canceled")
	assert.True(t, strings.HasPrefix(output, "> Are you sure? This operation is irreversible. [Y/N] "))
}

func TestInvalidConfiguration(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "start", "--config", "missing.yml")
	assert.NotNil(t, err)
	assert.Equal(t, "Error: could not load configuration: open missing.yml: no such file or directory\n", output)

	t.Setenv("EVENTSVC_DATABASE_DRIVER", "oracle")
	output, err = executeCommand(NewRootCmd(), "db", "up")
	assert.NotNil(t, err)
	assert.Equal(t, "Error: invalid configuration: invalid driver: oracle\n", output)
}
