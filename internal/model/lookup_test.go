package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindReturnsMatchingEntity(t *testing.T) {
	params := []*Parameter{
		{ID: "ParamAngleX", Index: 0},
		{ID: "ParamAngleY", Index: 1},
		{ID: "ParamEyeLOpen", Index: 2},
	}

	p, ok := Find(params, "ParamAngleY")
	require.True(t, ok)
	assert.Same(t, params[1], p)
}

func TestFindNotFound(t *testing.T) {
	params := []*Parameter{{ID: "ParamAngleX"}}

	p, ok := Find(params, "ParamBodyAngleZ")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestFindNilCollection(t *testing.T) {
	var parts []*Part

	p, ok := Find(parts, "PartArmL")
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Nil(t, FindPart(nil, "PartArmL"))
}

func TestFindEmptyCollection(t *testing.T) {
	_, ok := Find([]*Drawable{}, "ArtMesh0")
	assert.False(t, ok)
}

func TestFindFirstMatchWins(t *testing.T) {
	first := &Drawable{ID: "ArtMesh0", Index: 4}
	second := &Drawable{ID: "ArtMesh0", Index: 7}

	d := FindDrawable([]*Drawable{first, second}, "ArtMesh0")
	assert.Same(t, first, d)
}

func TestFindIsExactMatch(t *testing.T) {
	params := []*Parameter{{ID: "ParamAngleX"}}

	assert.Nil(t, FindParameter(params, "paramanglex"))
	assert.Nil(t, FindParameter(params, "ParamAngle"))
	assert.NotNil(t, FindParameter(params, "ParamAngleX"))
}

func TestNormalizeID(t *testing.T) {
	// e + combining acute accent composes to U+00E9.
	decomposed := "Parame\u0301"
	composed := "Param\u00e9"

	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, composed, NormalizeID(decomposed))
	assert.Equal(t, "ParamAngleX", NormalizeID("ParamAngleX"))
}
