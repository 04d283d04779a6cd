package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding/id"
)

func TestConstructorsUsePrefix(t *testing.T) {
	tests := []struct {
		name   string
		fn     func() id.ID
		prefix id.Prefix
	}{
		{"bond", id.NewBondID, id.PrefixBond},
		{"unbond", id.NewUnbondID, id.PrefixUnbond},
		{"audit", id.NewAuditID, id.PrefixAudit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn()
			assert.False(t, got.IsNil())
			assert.Equal(t, tt.prefix, got.Prefix())
			assert.True(t, strings.HasPrefix(got.String(), string(tt.prefix)+"_"), got.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	orig := id.NewBondID()

	parsed, err := id.Parse(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig.String(), parsed.String())

	parsed, err = id.Parse(orig.String(), id.PrefixUnbond, id.PrefixBond)
	require.NoError(t, err)
	assert.Equal(t, id.PrefixBond, parsed.Prefix())
}

func TestParseRejects(t *testing.T) {
	_, err := id.Parse("")
	assert.Error(t, err)

	_, err = id.Parse("not a typeid")
	assert.Error(t, err)

	_, err = id.Parse(id.NewAuditID().String(), id.PrefixBond)
	assert.ErrorContains(t, err, "want")
}

func TestNil(t *testing.T) {
	assert.True(t, id.Nil.IsNil())
	assert.Empty(t, id.Nil.String())
	assert.Empty(t, id.Nil.Prefix())
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		ID id.ID `json:"id"`
	}

	orig := wrapper{ID: id.NewUnbondID()}
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back wrapper
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.ID.String(), back.ID.String())

	data, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":""}`, string(data))

	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.ID.IsNil())
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		s := id.NewAuditID().String()
		_, dup := seen[s]
		require.False(t, dup, "duplicate id %s", s)
		seen[s] = struct{}{}
	}
}
