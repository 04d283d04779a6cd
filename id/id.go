// Package id generates the TypeIDs stamped on bond receipts and audit
// records, e.g. "bond_01h2xcejqtf2nbrexx3vqjhp41". IDs sort by creation time.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the kind of record an ID belongs to.
type Prefix string

// Known prefixes.
const (
	PrefixBond   Prefix = "bond"
	PrefixUnbond Prefix = "unb"
	PrefixAudit  Prefix = "audit"
)

// ID is a prefixed TypeID. The zero value is Nil and renders as "".
//
//nolint:recvcheck // UnmarshalText needs a pointer receiver.
type ID struct {
	tid typeid.TypeID
	ok  bool
}

// Nil is the zero ID.
var Nil ID

// New generates an ID with prefix. An invalid prefix is a programming
// error and panics.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: generate %q: %v", prefix, err))
	}
	return ID{tid: tid, ok: true}
}

func NewBondID() ID   { return New(PrefixBond) }
func NewUnbondID() ID { return New(PrefixUnbond) }
func NewAuditID() ID  { return New(PrefixAudit) }

// Parse parses s. When want is given, the prefix of s must be one of them.
func Parse(s string, want ...Prefix) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse: empty string")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	parsed := ID{tid: tid, ok: true}
	if len(want) == 0 {
		return parsed, nil
	}
	for _, p := range want {
		if parsed.Prefix() == p {
			return parsed, nil
		}
	}
	return Nil, fmt.Errorf("id: %q has prefix %q, want %v", s, parsed.Prefix(), want)
}

func (i ID) String() string {
	if !i.ok {
		return ""
	}
	return i.tid.String()
}

// Prefix returns the prefix, or "" for Nil.
func (i ID) Prefix() Prefix {
	if !i.ok {
		return ""
	}
	return Prefix(i.tid.Prefix())
}

func (i ID) IsNil() bool { return !i.ok }

// MarshalText renders Nil as an empty string.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText accepts an empty string as Nil.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
