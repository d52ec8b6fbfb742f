package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForExperience(t *testing.T) {
	cases := []struct {
		exp   int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{150, 2},
		{199, 2},
		{200, 3},
		{1000, 11},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForExperience(tc.exp), "exp=%d", tc.exp)
	}
}
