// Package account holds the per-(holder, provider, specifier) balance record
// the engine keeps for bonding, escrow and issuance.
package account

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/xraph/bonding/types"
)

// Key addresses one account. Holder is the subscriber whose dots are held;
// Provider and Specifier name the curve they were bought on.
type Key struct {
	Holder    string `json:"holder"`
	Provider  string `json:"provider"`
	Specifier string `json:"specifier"`
}

// NewKey builds a Key.
func NewKey(holder, provider, specifier string) Key {
	return Key{Holder: holder, Provider: provider, Specifier: specifier}
}

// String renders the key as "holder:provider:specifier". It is meant for
// logs and audit records; stores address accounts by Encode.
func (k Key) String() string {
	return k.Holder + ":" + k.Provider + ":" + k.Specifier
}

// Compare orders keys by holder, then provider, then specifier.
func (k Key) Compare(o Key) int {
	return cmp.Or(
		strings.Compare(k.Holder, o.Holder),
		strings.Compare(k.Provider, o.Provider),
		strings.Compare(k.Specifier, o.Specifier),
	)
}

// Encode returns a byte encoding of k that is unique per key and whose
// byte order matches Compare. Each part has 0x00 escaped as 0x00 0xFF and
// is terminated by 0x00 0x01, so no part can bleed into its neighbour.
func (k Key) Encode() []byte {
	var b bytes.Buffer
	for _, part := range []string{k.Holder, k.Provider, k.Specifier} {
		for i := 0; i < len(part); i++ {
			b.WriteByte(part[i])
			if part[i] == 0x00 {
				b.WriteByte(0xFF)
			}
		}
		b.WriteByte(0x00)
		b.WriteByte(0x01)
	}
	return b.Bytes()
}

// ParseKey is the inverse of Key.String for keys whose parts contain no ':'.
// The engine refuses any other key.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("account: malformed key %q", s)
	}
	return NewKey(parts[0], parts[1], parts[2]), nil
}

// Account is the stored state for one Key.
//
//	Bonded    dots currently bonded and free to escrow or unbond
//	ValueHeld deposit units held against the bonded dots
//	Escrowed  dots locked pending release to the provider
//	Issued    dots issued on this key's curve by bonding, net of unbonding
type Account struct {
	types.Entity
	Key       Key    `json:"key"`
	Bonded    uint64 `json:"bonded"`
	ValueHeld uint64 `json:"value_held"`
	Escrowed  uint64 `json:"escrowed"`
	Issued    uint64 `json:"issued"`
}

// New returns the zero account for key. An absent key reads as this value.
func New(key Key) *Account {
	return &Account{Key: key}
}

// Clone returns a copy of a that can be mutated independently.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// IsZero reports whether every balance of the account is zero.
func (a *Account) IsZero() bool {
	return a.Bonded == 0 && a.ValueHeld == 0 && a.Escrowed == 0 && a.Issued == 0
}
