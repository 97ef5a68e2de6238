package native

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

// Platform-specific capabilities live here, often implemented with
// cross-platform facilities (but not always).

// Paths resolves the directories a removal touches, plus the directory the
// tool keeps its own state in. Constructed once per process.
type Paths interface {
	// Where application bundles are installed, /Applications on macOS.
	ApplicationsDir() string

	// The current user's home directory.
	HomeDir() string

	// The per-user library, ~/Library on macOS.
	UserLibraryDir() string

	// System-owned library folders; deletions under these need privileges.
	SystemLibraryDirs() []string

	// Where install receipts live, /var/db/receipts on macOS.
	ReceiptsDir() string

	// Where the log file and removal manifests go.
	StateDir() string
}

// Privileged runs one command with administrator rights, feeding the
// captured password over its standard input. Run blocks until the command
// exits; there is no timeout beyond the caller's context.
type Privileged interface {
	Run(ctx context.Context, password string, argv ...string) ([]byte, error)
}

// ErrBadPassword means the privilege escalation mechanism rejected the
// supplied credentials.
var ErrBadPassword = errors.New("incorrect administrator password")

// ErrUnsupported is returned on platforms without a privilege escalation
// implementation.
var ErrUnsupported = errors.New("privileged execution is not supported on this platform")

func stateDir() string {
	return filepath.Join(xdg.StateHome, "keyremover")
}

// classifySudoError turns a failed sudo invocation into either
// ErrBadPassword (the escalation mechanism rejected the credentials) or a
// command failure carrying the captured stderr. sudo has no exit-code
// contract for rejected passwords, so this goes by its stderr text.
func classifySudoError(stderr string, err error) error {
	if strings.Contains(stderr, "Sorry, try again") || strings.Contains(stderr, "incorrect password") {
		return ErrBadPassword
	}
	return errors.WithMessage(err, strings.TrimSpace(stderr))
}

// Command runs one external command without privileges and returns its
// combined output. The `defaults` preference-domain calls go through here.
func Command(ctx context.Context, argv ...string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.Errorf("run: empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.WithMessage(err, strings.Join(argv, " "))
	}
	return out, nil
}

// portablePaths mirrors the macOS layout under the real home directory.
// It exists so everything above native stays testable off-platform.
type portablePaths struct {
	home string
}

func newPortablePaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.WithMessage(err, "resolving home directory")
	}
	return &portablePaths{home: home}, nil
}

func (pp *portablePaths) ApplicationsDir() string {
	return "/Applications"
}

func (pp *portablePaths) HomeDir() string {
	return pp.home
}

func (pp *portablePaths) UserLibraryDir() string {
	return filepath.Join(pp.home, "Library")
}

func (pp *portablePaths) SystemLibraryDirs() []string {
	return []string{
		"/Library/Application Support",
		"/Library/Preferences",
		"/Library/Caches",
	}
}

func (pp *portablePaths) ReceiptsDir() string {
	return "/var/db/receipts"
}

func (pp *portablePaths) StateDir() string {
	return stateDir()
}

type unsupportedRunner struct{}

func (ur *unsupportedRunner) Run(ctx context.Context, password string, argv ...string) ([]byte, error) {
	return nil, errors.WithMessage(ErrUnsupported, strings.Join(argv, " "))
}
