// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-matcher/pkg/types"
)

func TestMostCited(t *testing.T) {
	candidates := []types.FunderCandidate{
		{ID: "F1", DisplayName: "Funder One", WorksCount: 10},
		{ID: "F2", DisplayName: "Funder Two", WorksCount: 50},
		{ID: "F3", DisplayName: "Funder Three", WorksCount: 5},
	}

	chosen, err := MostCited("G1", candidates)
	require.NoError(t, err)
	assert.Equal(t, "F2", chosen.ID)
}

func TestMostCited_TieKeepsFirst(t *testing.T) {
	candidates := []types.FunderCandidate{
		{ID: "F1", WorksCount: 7},
		{ID: "F2", WorksCount: 7},
	}

	chosen, err := MostCited("G1", candidates)
	require.NoError(t, err)
	assert.Equal(t, "F1", chosen.ID)
}

func TestMostCited_NoCandidates(t *testing.T) {
	_, err := MostCited("G1", nil)
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	candidates := []types.FunderCandidate{
		{ID: "F1", WorksCount: 3},
		{ID: "F2", WorksCount: 1},
	}

	chosen, err := Fixed("F2")("G1", candidates)
	require.NoError(t, err)
	assert.Equal(t, "F2", chosen.ID)

	_, err = Fixed("F9")("G1", candidates)
	assert.ErrorContains(t, err, "not a candidate")
}
