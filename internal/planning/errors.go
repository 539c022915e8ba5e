package planning

import "fmt"

// ParseError means the markup or the data of an entry did not have the expected shape.
type ParseError struct {
	// Section names the part of the entry that failed, ex. "global info" or "courses".
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("planning: parse %s: %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
