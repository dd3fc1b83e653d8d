package cache

import (
	"encoding/hex"
	"net/url"

	"github.com/zeebo/blake3"
)

// Scope is the second segment of a cache key.
type Scope string

const (
	// ScopeList addresses filtered listings of a resource
	ScopeList Scope = "list"
	// ScopeDetail addresses a single entity by id
	ScopeDetail Scope = "detail"
)

// Key is the hierarchical identifier under which a fetched value is stored.
// The resource and scope segments allow a whole list scope to be invalidated
// without enumerating every concrete parameter combination previously cached.
type Key struct {
	Resource string
	Scope    Scope
	Ref      string
}

// String renders the key as resource/scope/ref.
func (k Key) String() string {
	return k.Resource + "/" + string(k.Scope) + "/" + k.Ref
}

// ListKey builds the key for a filtered listing. Parameters are canonicalized
// through url.Values encoding (sorted by name) and fingerprinted, so equal
// filter sets always land on the same key regardless of construction order,
// and distinct combinations never collide.
func ListKey(resource string, params url.Values) Key {
	ref := "all"
	if len(params) > 0 {
		sum := blake3.Sum256([]byte(params.Encode()))
		ref = hex.EncodeToString(sum[:8])
	}
	return Key{Resource: resource, Scope: ScopeList, Ref: ref}
}

// DetailKey builds the key for a single entity.
func DetailKey(resource, id string) Key {
	return Key{Resource: resource, Scope: ScopeDetail, Ref: id}
}
