package account_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding/account"
)

func TestKeyStringRoundTrip(t *testing.T) {
	k := account.NewKey("alice", "oracle", "btc-usd")
	assert.Equal(t, "alice:oracle:btc-usd", k.String())

	parsed, err := account.ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	_, err = account.ParseKey("alice:oracle")
	assert.Error(t, err)
}

func TestEncodeSeparatesParts(t *testing.T) {
	a := account.NewKey("alice:x", "oracle", "btc")
	b := account.NewKey("alice", "x:oracle", "btc")
	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.Encode(), b.Encode())

	nul := account.NewKey("a\x00", "b", "c")
	shifted := account.NewKey("a", "\x00b", "c")
	assert.NotEqual(t, nul.Encode(), shifted.Encode())
}

func TestEncodeOrderMatchesCompare(t *testing.T) {
	keys := []account.Key{
		account.NewKey("alice", "oracle", "btc"),
		account.NewKey("alice", "oracle", "btc\x00"),
		account.NewKey("alice", "oracle", "eth"),
		account.NewKey("alice", "oraclex", ""),
		account.NewKey("alice:x", "oracle", "btc"),
		account.NewKey("alice\x00", "", ""),
		account.NewKey("alicex", "", ""),
		account.NewKey("bob", "a", "b"),
	}
	for i := range keys {
		for j := range keys {
			want := keys[i].Compare(keys[j])
			got := bytes.Compare(keys[i].Encode(), keys[j].Encode())
			assert.Equal(t, want, got, "%q vs %q", keys[i], keys[j])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := account.New(account.NewKey("alice", "oracle", "btc-usd"))
	assert.True(t, a.IsZero())

	c := a.Clone()
	c.Bonded = 5
	assert.Zero(t, a.Bonded)
	assert.False(t, c.IsZero())
}

func TestListOptsMatches(t *testing.T) {
	k := account.NewKey("alice", "oracle", "btc-usd")
	assert.True(t, account.ListOpts{}.Matches(k))
	assert.True(t, account.ListOpts{Provider: "oracle"}.Matches(k))
	assert.False(t, account.ListOpts{Holder: "bob"}.Matches(k))
	assert.False(t, account.ListOpts{Provider: "oracle", Specifier: "eth-usd"}.Matches(k))
}
