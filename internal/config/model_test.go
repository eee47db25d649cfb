package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalltimeDuration(t *testing.T) {
	cases := []struct {
		name     string
		walltime string
		want     time.Duration
		wantErr  bool
	}{
		{"two days", "48:00:00", 48 * time.Hour, false},
		{"minutes and seconds", "00:30:15", 30*time.Minute + 15*time.Second, false},
		{"empty means unlimited", "", 0, false},
		{"garbage", "two days", 0, true},
		{"minutes out of range", "01:75:00", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resources{Walltime: tc.walltime}
			got, err := r.WalltimeDuration()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWalltimeDurationNilResources(t *testing.T) {
	var r *Resources
	got, err := r.WalltimeDuration()
	require.NoError(t, err)
	assert.Zero(t, got)
}
