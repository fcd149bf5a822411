package model

// Path represents a file system path. Relative paths are resolved against the
// invocation's working directory (or a suite file's directory) before use.
type Path string

func (p Path) String() string {
	return string(p)
}
