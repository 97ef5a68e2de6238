package remover

import (
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
)

// ProcessLister enumerates running processes, see ps.Processes.
type ProcessLister func() ([]ps.Process, error)

// executableNames collects the names a running instance of the bundle
// would show up under: everything in Contents/MacOS. The bundle's own
// names are only used as a fallback when there is no MacOS folder to
// enumerate; a generically named app would otherwise match unrelated
// processes.
func executableNames(bundlePath string, fallbacks ...string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	entries, err := os.ReadDir(filepath.Join(bundlePath, "Contents", "MacOS"))
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				add(entry.Name())
			}
		}
	}

	if len(names) == 0 {
		for _, fallback := range fallbacks {
			add(fallback)
		}
	}

	return names
}

// findRunning reports the executable name of a live process belonging to
// the bundle, or "" if none is found.
func findRunning(listProcesses ProcessLister, bundlePath string, fallbacks ...string) (string, error) {
	names := executableNames(bundlePath, fallbacks...)
	if len(names) == 0 {
		return "", nil
	}

	procs, err := listProcesses()
	if err != nil {
		return "", errors.WithMessage(err, "listing processes")
	}

	for _, proc := range procs {
		for _, name := range names {
			if strings.EqualFold(proc.Executable(), name) {
				return proc.Executable(), nil
			}
		}
	}

	return "", nil
}
