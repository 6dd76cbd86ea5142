package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusExecuted}
	allowed := map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {StatusExecuted},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusExecuted.Terminal())
	assert.False(t, StatusApproved.Terminal())

	_, err := ParseStatus("cancelled")
	assert.Error(t, err)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, d)

	_, err = ParseDecision("abstain")
	assert.Error(t, err)
}

func TestIdentitySet(t *testing.T) {
	s := NewIdentitySet("B@x.io", "a@x.io", " b@x.io ", "")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("A@X.IO"))
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, s.Slice())
	assert.False(t, s.Add("a@x.io"))

	other := NewIdentitySet("c@x.io")
	assert.False(t, s.Intersects(other))
	other.Add("b@x.io")
	assert.True(t, s.Intersects(other))

	var zero IdentitySet
	assert.Equal(t, 0, zero.Len())
	assert.False(t, zero.Contains("a@x.io"))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["a@x.io","b@x.io"]`, string(data))

	var decoded IdentitySet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.Slice(), decoded.Slice())
}

func TestAssetRefNormalization(t *testing.T) {
	assert.Equal(t, NativeAssetCode, NormalizeAssetRef(""))
	assert.Equal(t, NativeAssetCode, NormalizeAssetRef("native"))
	assert.Equal(t, NativeAssetCode, NormalizeAssetRef("sol"))
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", NormalizeAssetRef(" EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v "))
}

func TestNewVaultSummaryHidesSecret(t *testing.T) {
	v := Vault{
		ID:               "v1",
		CustodialAddress: "addr",
		SealedSecret:     SealedSecret{CipherText: "secret"},
		CreatedBy:        "a@x.io",
		Members:          NewIdentitySet("a@x.io", "b@x.io"),
	}

	summary := NewVaultSummary(v, "A@x.io")
	assert.True(t, summary.IsCreator)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
