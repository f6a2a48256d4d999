// Package contractid classifies contract identifiers: either the key of a
// built-in contract or a content-addressed IPFS URI.
package contractid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
)

const (
	Scheme = "ipfs://"

	// placeholder is what an unset identifier looks like after prefixing.
	placeholder = Scheme + "undefined"
)

var ErrInvalidContractID = errors.New("invalid contract id")

// Lookup is satisfied by the built-in registry.
type Lookup interface {
	Has(key string) bool
}

// Validate rejects identifiers that violate the input contract: empty
// values and the "undefined" placeholder.
func Validate(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidContractID)
	}
	if id == placeholder || id == "undefined" {
		return fmt.Errorf("%w: uri can't be undefined", ErrInvalidContractID)
	}
	return nil
}

// IsBuiltIn reports whether id is an exact key of the built-in registry.
func IsBuiltIn(id string, builtins Lookup) bool {
	if builtins == nil {
		return false
	}
	return builtins.Has(id)
}

// ToIPFSHash normalises id: built-in keys and ipfs URIs pass through,
// anything else gets the ipfs scheme.
func ToIPFSHash(id string, builtins Lookup) string {
	if IsBuiltIn(id, builtins) || strings.HasPrefix(id, Scheme) {
		return id
	}
	return Scheme + id
}

// ParseURI splits an ipfs URI into its root CID and the path below it.
func ParseURI(uri string) (cid.Cid, string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, Scheme) {
		return cid.Undef, "", fmt.Errorf("%w: %q is not an ipfs uri", ErrInvalidContractID, uri)
	}
	rest := strings.TrimPrefix(uri, Scheme)
	rest = strings.TrimPrefix(rest, "ipfs/")
	root, path, _ := strings.Cut(rest, "/")
	if root == "" {
		return cid.Undef, "", fmt.Errorf("%w: %q has no cid", ErrInvalidContractID, uri)
	}
	c, err := cid.Decode(root)
	if err != nil {
		return cid.Undef, "", fmt.Errorf("%w: %q: %v", ErrInvalidContractID, uri, err)
	}
	return c, strings.Trim(path, "/"), nil
}

// Canonical returns the ipfs URI of c and path in normalised form.
func Canonical(c cid.Cid, path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return Scheme + c.String()
	}
	return Scheme + c.String() + "/" + path
}
