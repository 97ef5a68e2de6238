package native

import (
	"context"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsLayout(t *testing.T) {
	paths, err := NewPaths()
	require.NoError(t, err)

	home := paths.HomeDir()
	require.NotEmpty(t, home)

	assert.Equal(t, "/Applications", paths.ApplicationsDir())
	assert.Equal(t, home+"/Library", paths.UserLibraryDir())
	assert.Contains(t, paths.SystemLibraryDirs(), "/Library/Preferences")
	assert.Equal(t, "/var/db/receipts", paths.ReceiptsDir())
	assert.NotEmpty(t, paths.StateDir())
}

func TestCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a unix shell")
	}

	out, err := Command(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a unix shell")
	}

	_, err := Command(context.Background(), "false")
	assert.Error(t, err)
}

func TestCommandEmpty(t *testing.T) {
	_, err := Command(context.Background())
	assert.Error(t, err)
}

func TestClassifySudoError(t *testing.T) {
	cmdErr := errors.New("exit status 1")

	cases := []struct {
		name        string
		stderr      string
		badPassword bool
	}{
		{"sorry try again", "Password:\nSorry, try again.\n", true},
		{"incorrect password", "sudo: incorrect password attempt\n", true},
		{"unrelated failure", "rm: /Library/Caches/foo: Operation not permitted\n", false},
		{"empty stderr", "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := classifySudoError(c.stderr, cmdErr)
			require.Error(t, err)
			if c.badPassword {
				assert.Equal(t, ErrBadPassword, errors.Cause(err))
			} else {
				assert.NotEqual(t, ErrBadPassword, errors.Cause(err))
				assert.Equal(t, cmdErr, errors.Cause(err))
			}
		})
	}
}

func TestUnsupportedRunner(t *testing.T) {
	runner := &unsupportedRunner{}
	_, err := runner.Run(context.Background(), "hunter2", "rm", "-rf", "/tmp/x")
	assert.Equal(t, ErrUnsupported, errors.Cause(err))
}
