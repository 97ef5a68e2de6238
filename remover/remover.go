package remover

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"

	"github.com/keyremover/keyremover/bundle"
	"github.com/keyremover/keyremover/native"
)

// CommandRunner runs one unprivileged external command, see native.Command.
type CommandRunner func(ctx context.Context, argv ...string) ([]byte, error)

// Settings configures a Remover, constructed once per process.
type Settings struct {
	// The directories one removal sweeps, in order.
	Dirs DirSet

	// Privileged command runner for system-owned and App Store paths.
	Privileged native.Privileged

	// Unprivileged command runner, for `defaults delete`.
	RunCommand CommandRunner

	// Process enumeration, for the running-app guard.
	ListProcesses ProcessLister

	// Extra glob patterns from the config file, swept after the derived ones.
	ExtraPatterns []string
}

// Params describes one removal attempt.
type Params struct {
	BundlePath string
	Info       bundle.Info

	// The application was installed through the App Store; all its files
	// are deleted through the privileged runner.
	AppStore bool

	// Administrator password. Empty means no privileged deletion happens.
	Password string

	// Report what would be removed without touching anything.
	DryRun bool

	// Proceed even if the application is running.
	Force bool
}

// Result is what one removal attempt produced, consumed by the CLI for
// display and persisted in the removal manifest.
type Result struct {
	Success      bool
	Message      string
	RemovedPaths []string
	NeedsSudo    bool
	OperationID  string
}

type Remover struct {
	settings Settings
}

func New(settings Settings) *Remover {
	if settings.RunCommand == nil {
		settings.RunCommand = native.Command
	}
	if settings.ListProcesses == nil {
		settings.ListProcesses = ps.Processes
	}
	return &Remover{settings: settings}
}

// Remove sweeps the known directories for files matching the application,
// clears its preference domain, then deletes the bundle itself. Per-file
// sweep failures are logged and skipped; only the final bundle deletion
// decides Success. The sweep always runs to completion.
func (r *Remover) Remove(ctx context.Context, params Params) *Result {
	res := &Result{
		OperationID: uuid.New().String(),
	}

	log.Printf("Operation %s: removing (%s)", res.OperationID, params.BundlePath)

	if !params.Force {
		running, err := findRunning(r.settings.ListProcesses, params.BundlePath,
			params.Info.Name, params.Info.DisplayName)
		if err != nil {
			log.Printf("Could not check running processes: %v", err)
			log.Printf("(continuing anyway)")
		} else if running != "" {
			res.Message = fmt.Sprintf("%s is still running, quit it first (or pass --force)", running)
			Emit(Done{Success: false, Message: res.Message})
			return res
		}
	}

	seen := make(map[string]bool)
	record := func(path string, elevated bool) {
		if seen[path] {
			return
		}
		seen[path] = true
		res.RemovedPaths = append(res.RemovedPaths, path)
		Emit(SweepItem{Path: path, Elevated: elevated, DryRun: params.DryRun})
	}

	r.sweep(ctx, params, record)
	if r.clearDefaults(ctx, params) {
		res.RemovedPaths = append(res.RemovedPaths, "defaults domain: "+params.Info.BundleID)
	}

	if params.DryRun {
		record(params.BundlePath, false)
		res.Success = true
		res.Message = fmt.Sprintf("Dry run: %d items would be removed", len(res.RemovedPaths))
		Emit(Done{Success: true, Message: res.Message, RemovedCount: len(res.RemovedPaths)})
		return res
	}

	err := r.removeBundle(ctx, params, record)
	if err != nil {
		if errors.Cause(err) == errNeedsSudo {
			res.NeedsSudo = true
			res.Message = "Administrator privileges are required to remove this application"
			Emit(NeedsSudo{})
		} else {
			res.Message = fmt.Sprintf("Could not remove %s: %v", params.BundlePath, err)
		}
		Emit(Done{Success: false, Message: res.Message, RemovedCount: len(res.RemovedPaths)})
		return res
	}

	res.Success = true
	res.Message = fmt.Sprintf("Removed %s (%d items)", params.Info.DisplayName, len(res.RemovedPaths))
	Emit(Done{Success: true, Message: res.Message, RemovedCount: len(res.RemovedPaths)})
	return res
}

// MergeRemoved combines the paths removed by an initial attempt and its
// retry, in order, dropping duplicates. A needs-sudo retry sweeps again
// after the first pass already deleted everything it could reach, so the
// record of the whole invocation is the union of both attempts.
func MergeRemoved(first []string, retry []string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, path := range append(append([]string{}, first...), retry...) {
		if seen[path] {
			continue
		}
		seen[path] = true
		merged = append(merged, path)
	}
	return merged
}

// sweep visits every directory/pattern combination and deletes (or, dry
// run, records) each match. Nothing here aborts the sweep.
func (r *Remover) sweep(ctx context.Context, params Params, record func(path string, elevated bool)) {
	patterns := Patterns(params.Info)
	patterns = append(patterns, r.settings.ExtraPatterns...)
	if len(patterns) == 0 {
		log.Printf("No patterns to sweep for (%s)", params.BundlePath)
		return
	}

	for _, dir := range r.settings.Dirs {
		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(dir.Path, pattern))
			if err != nil {
				log.Printf("Bad pattern (%s): %v", pattern, err)
				continue
			}

			for _, match := range matches {
				elevated := dir.System || params.AppStore

				if params.DryRun {
					log.Printf("would delete (%s)", match)
					record(match, elevated)
					continue
				}

				err := r.deleteOne(ctx, match, elevated, params.Password)
				if err != nil {
					log.Printf("warning: %v", err)
					log.Printf("(continuing anyway)")
					continue
				}
				record(match, elevated)
			}
		}
	}
}

// deleteOne removes a single sweep match. System-owned paths and App
// Store files go through the privileged runner when a password is
// available; everything else is deleted directly.
func (r *Remover) deleteOne(ctx context.Context, path string, elevated bool, password string) error {
	if elevated && password != "" {
		log.Printf("delete (%s) [sudo]", path)
		_, err := r.settings.Privileged.Run(ctx, password, "rm", "-rf", path)
		return err
	}

	log.Printf("delete (%s)", path)
	return os.RemoveAll(path)
}

// clearDefaults drops the application's preference domain and reports
// whether it actually got cleared. Best-effort: failure is logged and
// never fails the removal.
func (r *Remover) clearDefaults(ctx context.Context, params Params) bool {
	if params.Info.BundleID == "" || params.DryRun {
		return false
	}

	_, err := r.settings.RunCommand(ctx, "defaults", "delete", params.Info.BundleID)
	if err == nil {
		Emit(DefaultsCleared{BundleID: params.Info.BundleID})
		return true
	}

	log.Printf("Could not clear defaults domain (%s): %v", params.Info.BundleID, err)

	if params.AppStore && params.Password != "" {
		_, err = r.settings.Privileged.Run(ctx, params.Password, "defaults", "delete", params.Info.BundleID)
		if err != nil {
			log.Printf("Could not clear defaults domain with sudo either: %v", err)
			return false
		}
		Emit(DefaultsCleared{BundleID: params.Info.BundleID})
		return true
	}

	return false
}

var errNeedsSudo = errors.New("needs administrator privileges")

func (r *Remover) removeBundle(ctx context.Context, params Params, record func(path string, elevated bool)) error {
	elevated := params.AppStore || !writable(params.BundlePath)

	if elevated {
		if params.Password == "" {
			return errors.WithMessage(errNeedsSudo, params.BundlePath)
		}
		log.Printf("delete (%s)/ [sudo]", params.BundlePath)
		_, err := r.settings.Privileged.Run(ctx, params.Password, "rm", "-rf", params.BundlePath)
		if err != nil {
			return err
		}
		record(params.BundlePath, true)
		return nil
	}

	log.Printf("delete (%s)/", params.BundlePath)
	err := os.RemoveAll(params.BundlePath)
	if err != nil {
		return err
	}
	record(params.BundlePath, false)
	return nil
}

// writable probes whether the current user can delete inside a directory
// by creating and removing a scratch file there.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".keyremover-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
