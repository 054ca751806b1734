package ids

import "github.com/segmentio/ksuid"

// New returns a sortable, globally unique identifier.
func New() string {
	return ksuid.New().String()
}

// Valid reports whether id has the shape of an identifier produced by New.
func Valid(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
