package cl

import "github.com/keyremover/keyremover/localize"

// everything parsed off the command line, in one place

type CLI struct {
	VersionString string

	Localizer *localize.Localizer

	// Display name of the application to remove, e.g. "Final Cut Pro"
	AppName string

	Sudo    bool
	DryRun  bool
	Yes     bool
	Force   bool
	JSON    bool
	Locate  bool
	Reveal  bool
	History bool

	ConfigPath string
}
