package native

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/itchio/ox/macox"
	"github.com/pkg/errors"
)

type darwinPaths struct {
	home string
}

// NewPaths returns the macOS directory layout: bundles under /Applications,
// per-user data under ~/Library, system data under /Library, App Store
// receipts under /var/db/receipts.
func NewPaths() (Paths, error) {
	home, err := macox.GetHomeDirectory()
	if err != nil {
		return nil, errors.WithMessage(err, "resolving home directory")
	}

	log.Printf("Home dir: %s", home)

	return &darwinPaths{home: home}, nil
}

func (dp *darwinPaths) ApplicationsDir() string {
	return "/Applications"
}

func (dp *darwinPaths) HomeDir() string {
	return dp.home
}

func (dp *darwinPaths) UserLibraryDir() string {
	return filepath.Join(dp.home, "Library")
}

func (dp *darwinPaths) SystemLibraryDirs() []string {
	return []string{
		"/Library/Application Support",
		"/Library/Preferences",
		"/Library/Caches",
	}
}

func (dp *darwinPaths) ReceiptsDir() string {
	return "/var/db/receipts"
}

func (dp *darwinPaths) StateDir() string {
	return stateDir()
}

type sudoRunner struct{}

// NewPrivileged returns the macOS privileged runner: `sudo -S` with the
// password fed over stdin. `-k` discards any cached sudo timestamp so the
// password is actually checked, `-p ''` suppresses the prompt text.
func NewPrivileged() Privileged {
	return &sudoRunner{}
}

func (sr *sudoRunner) Run(ctx context.Context, password string, argv ...string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.Errorf("privileged run: empty command")
	}

	sudoArgs := append([]string{"-S", "-p", "", "-k"}, argv...)
	cmd := exec.CommandContext(ctx, "sudo", sudoArgs...)
	cmd.Stdin = strings.NewReader(password + "\n")

	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	if err != nil {
		return out.Bytes(), classifySudoError(errOut.String(), err)
	}

	return out.Bytes(), nil
}
