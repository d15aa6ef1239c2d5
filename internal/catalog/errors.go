package catalog

import "fmt"

// ParseError reports a file or directory whose name does not follow the
// catalog grammar. Parse errors exclude the entry from the catalog but
// never abort a scan.
type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Name, e.Reason)
}
