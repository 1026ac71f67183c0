package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Kind
		str     string
		unknown bool
	}{
		{name: "totp", raw: "totp", want: KindTOTP, str: "totp"},
		{name: "hotp upper case", raw: " HOTP ", want: KindHOTP, str: "hotp"},
		{name: "unknown", raw: "sms", want: KindUnknown, str: "unknown", unknown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KindFromString(tt.raw)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
			assert.Equal(t, tt.unknown, got.IsUnknown())
		})
	}
}

func TestTokenRecord_Clone(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		var rec *TokenRecord
		assert.Nil(t, rec.Clone())
	})

	t.Run("Independent", func(t *testing.T) {
		rec := &TokenRecord{OwnerID: 7, Counter: 3}

		c := rec.Clone()
		c.Counter = 4

		assert.Equal(t, uint64(3), rec.Counter)
		assert.Equal(t, int64(7), c.OwnerID)
	})
}
