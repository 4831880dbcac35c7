//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/textidx/model"
)

func TestUint64ToInt64(t *testing.T) {
	got, err := Uint64ToInt64(math.MaxInt64)
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	_, err = Uint64ToInt64(math.MaxInt64 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestRowID(t *testing.T) {
	tests := []struct {
		name    string
		in      uint64
		want    model.RowID
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"small", 42, 42, false},
		{"max", math.MaxUint32, math.MaxUint32, false},
		{"overflow", math.MaxUint32 + 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RowID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverflow)
				assert.Contains(t, err.Error(), "32-bit row id space")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
