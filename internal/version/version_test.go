package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "1.2.3", "1.2.3", false},
		{"v prefix", "v1.2.3", "1.2.3", false},
		{"prerelease", "v2.0.0-rc.1", "2.0.0-rc.1", false},
		{"build metadata", "1.0.0+build.7", "1.0.0+build.7", false},
		{"missing patch", "1.2", "", true},
		{"garbage", "not-a-version", "", true},
		{"empty", "", "", true},
		{"double v", "vv1.0.0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCompare(t *testing.T) {
	a := New(0, 9, 0)
	b := New(0, 30, 0)
	assert.True(t, a.Less(b), "0.9.0 should sort before 0.30.0")
	assert.Equal(t, 0, New(1, 2, 3).Compare(New(1, 2, 3)))
	assert.Equal(t, 1, New(2, 0, 0).Compare(New(1, 99, 99)))
}

func TestNext(t *testing.T) {
	base := New(1, 2, 3)
	assert.Equal(t, "2.0.0", base.NextMajor().String())
	assert.Equal(t, "1.3.0", base.NextMinor().String())
	assert.Equal(t, "1.2.4", base.NextPatch().String())

	pre, err := Parse("1.2.3-rc.1")
	require.NoError(t, err)
	assert.Equal(t, "1.2.4", pre.NextPatch().String())
}

func TestTagRoundTrip(t *testing.T) {
	v := New(0, 1, 0)
	assert.Equal(t, "v0.1.0", v.Tag())
	assert.True(t, IsValid(v.Tag()))
}

func TestZeroValue(t *testing.T) {
	var v Version
	assert.Equal(t, "0.0.0", v.String())
	assert.Equal(t, "0.0.1", v.NextPatch().String())
}
