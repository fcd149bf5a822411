package model

import "fmt"

// Finding is a single rule violation at a source location. Line and Column
// are 1-based.
type Finding struct {
	File    Path
	Line    uint32
	Column  uint32
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", f.File, f.Line, f.Column, f.Message)
}
