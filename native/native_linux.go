package native

// Linux gets the portable fallback: the macOS-shaped directory layout
// rooted at the real home directory, which is what the tests exercise.
// There is no privilege escalation path here.

func NewPaths() (Paths, error) {
	return newPortablePaths()
}

func NewPrivileged() Privileged {
	return &unsupportedRunner{}
}
