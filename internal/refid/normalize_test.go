package refid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"t1_abc123", "abc123"},
		{"t3_xyz", "xyz"},
		{"T1_Upper", "Upper"},
		{"abc123", "abc123"},
		{"", ""},
		{"t_abc", "t_abc"},
		{"tt1_abc", "tt1_abc"},
		{"t12_abc", "abc"},
		{"t1_t3_nested", "nested"},
		{"t1_", ""},
		{"abc_t1_def", "abc_t1_def"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"t1_abc", "t3_t1_x", "plain", "", "t1_", "x9_y", "t1_a_b"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
