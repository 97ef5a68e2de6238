package native

// Windows gets the portable fallback, for development only. Nothing this
// tool removes exists on Windows.

func NewPaths() (Paths, error) {
	return newPortablePaths()
}

func NewPrivileged() Privileged {
	return &unsupportedRunner{}
}
