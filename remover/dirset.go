package remover

import (
	"path/filepath"

	"github.com/keyremover/keyremover/native"
)

// Dir is one entry of the sweep list. System entries sit under roots the
// current user doesn't own; deleting there goes through the privileged
// runner.
type Dir struct {
	Path   string
	System bool
}

// DirSet is the ordered list of directories one removal sweeps. The
// built-in set is fixed; config extras are appended after it and never
// reorder it.
type DirSet []Dir

var userLibrarySubdirs = []string{
	"Application Support",
	"Preferences",
	"Caches",
	"Logs",
	"Containers",
	"Application Scripts",
	"Saved Application State",
	"Group Containers",
}

// DefaultDirSet builds the fixed sweep list from the platform paths:
// the per-user Library subfolders, then the system Library folders, then
// the App Store receipts directory.
func DefaultDirSet(paths native.Paths) DirSet {
	var ds DirSet

	userLib := paths.UserLibraryDir()
	for _, sub := range userLibrarySubdirs {
		ds = append(ds, Dir{Path: filepath.Join(userLib, sub)})
	}

	for _, dir := range paths.SystemLibraryDirs() {
		ds = append(ds, Dir{Path: dir, System: true})
	}

	ds = append(ds, Dir{Path: paths.ReceiptsDir(), System: true})

	return ds
}

// WithExtras returns the set plus user-supplied directories from the
// config file, swept after the built-in list.
func (ds DirSet) WithExtras(extras []string) DirSet {
	out := ds
	for _, extra := range extras {
		out = append(out, Dir{Path: extra})
	}
	return out
}
