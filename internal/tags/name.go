package tags

import (
	"errors"
	"fmt"

	"github.com/distribution/reference"
)

var (
	ErrInvalidName = errors.New("invalid tag name")
	ErrNotFound    = errors.New("tag not found")
	ErrExists      = errors.New("tag already exists")
)

// Checks that name is a valid Docker-convention tag reference.
//
// A valid name is "name:tag": a lowercase repository component followed by
// an explicit tag component. Bare names and digest references are rejected;
// a tag in the registry always points somewhere by name.
func ValidName(name string) error {
	ref, err := reference.Parse(name)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}

	if _, ok := ref.(reference.Digested); ok {
		return fmt.Errorf("%w: %q: digest references are not tag names", ErrInvalidName, name)
	}

	if _, ok := ref.(reference.Tagged); !ok {
		return fmt.Errorf("%w: %q: must match pattern 'name:tag'", ErrInvalidName, name)
	}

	return nil
}
