package protocol

import (
	"fmt"
	"strings"
)

// DefaultNamespace is substituted for an identifier that omits the
// "namespace:" prefix (§3.1).
const DefaultNamespace = "minecraft"

// Identifier is a namespaced string of the form "namespace:path".
type Identifier struct {
	Namespace, Path string
}

// ParseIdentifier splits s on the first colon. If s has no colon, Namespace
// defaults to DefaultNamespace and Path is s in full.
func ParseIdentifier(s string) Identifier {
	if ns, path, ok := strings.Cut(s, ":"); ok {
		return Identifier{Namespace: ns, Path: path}
	}
	return Identifier{Namespace: DefaultNamespace, Path: s}
}

// MustIdentifier is like ParseIdentifier but panics if the result does not
// validate; it is meant for identifiers known at compile time.
func MustIdentifier(s string) Identifier {
	id := ParseIdentifier(s)
	if err := id.Validate(); err != nil {
		panic(err)
	}
	return id
}

// String renders the identifier back to "namespace:path" form.
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

func validSegment(s string, allowSlash bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		case r == '/' && allowSlash:
		default:
			return false
		}
	}
	return true
}

// Validate reports whether the namespace and path both obey the restricted
// identifier character set (§3.1): lowercase ASCII letters, digits, and
// '_', '-', '.'; the path segment additionally permits '/'.
func (id Identifier) Validate() error {
	if !validSegment(id.Namespace, false) {
		return fmt.Errorf("protocol: invalid identifier namespace %q", id.Namespace)
	}
	if !validSegment(id.Path, true) {
		return fmt.Errorf("protocol: invalid identifier path %q", id.Path)
	}
	return nil
}
