// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxivid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", "2301.07041", "2301.07041"},
		{"versioned", "2301.07041v3", "2301.07041"},
		{"prefixed", "arXiv:2301.07041v1", "2301.07041"},
		{"five digit", "2401.12345", "2401.12345"},
		{"abs url", "https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"pdf url", "https://arxiv.org/pdf/2301.07041v2.pdf", "2301.07041"},
		{"old style", "hep-th/9901001v2", "hep-th/9901001"},
		{"old style subject class", "math.GT/0309136", "math.GT/0309136"},
		{"whitespace", "  2301.07041  ", "2301.07041"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonical_Invalid(t *testing.T) {
	for _, input := range []string{"", "not-an-id", "10.1145/1234567", "2301.123", "2301.07041vX"} {
		_, err := Canonical(input)
		assert.ErrorIs(t, err, ErrInvalid, "input %q", input)
	}
}

func TestStripVersion(t *testing.T) {
	assert.Equal(t, "2301.07041", StripVersion("2301.07041v12"))
	assert.Equal(t, "2301.07041", StripVersion("2301.07041"))
	assert.Equal(t, "abc-v", StripVersion("abc-v"))
	assert.Equal(t, "hep-th/9901001", StripVersion("hep-th/9901001v1"))
}

func TestParseList(t *testing.T) {
	ids, err := ParseList("2301.07041v2, 2301.07041,2402.00001,,arXiv:2402.00001v4")
	require.NoError(t, err)
	assert.Equal(t, []string{"2301.07041", "2402.00001"}, ids)
}

func TestParseList_RejectsMalformed(t *testing.T) {
	_, err := ParseList("2301.07041,bogus")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseList_Empty(t *testing.T) {
	ids, err := ParseList(" , ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
