package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositiveAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "10", want: "10"},
		{name: "fraction", input: " 0.5 ", want: "0.5"},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "leading point", input: ".25", want: "0.25"},
		{name: "exponent", input: "1e-20000000", wantErr: true},
		{name: "upper exponent", input: "5E3", wantErr: true},
		{name: "trailing point", input: "1.", wantErr: true},
		{name: "too many decimals", input: "0.0000000000000000001", wantErr: true},
		{name: "too many digits", input: "1000000000000000000000000000000", wantErr: true},
		{name: "max digits", input: "000999999999999999999999999999999.5", want: "999999999999999999999999999999.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePositiveAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToBaseUnits(t *testing.T) {
	lamports, err := SOLToLamports("0.024981836")
	require.NoError(t, err)
	assert.Equal(t, uint64(24981836), lamports)

	micro, err := ToBaseUnits("12.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(12500000), micro)

	_, err = ToBaseUnits("0.0000001", 6)
	assert.Error(t, err, "precision beyond token decimals must be rejected")

	_, err = ToBaseUnits("0", 9)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "0.024981836", LamportsToSOL(24981836).String())
	assert.True(t, FromBaseUnits(1500000, 6).Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "0", FormatAmount(FromBaseUnits(0, 9)))
}
