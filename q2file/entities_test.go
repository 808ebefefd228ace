package q2file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntities(t *testing.T) {
	entities, err := ParseEntities(testEntities + "\x00")
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, "worldspawn", entities[0].Classname())
	assert.Equal(t, "test map", entities[0]["message"])

	light := entities[1]
	assert.Equal(t, "light", light.Classname())
	assert.Equal(t, float32(200), light.Float("light", 300))
	assert.Equal(t, float32(300), light.Float("missing", 300))

	origin, ok := light.Vec3("origin")
	assert.True(t, ok)
	assert.Equal(t, [3]float32{32, 32, 48}, origin)

	color, ok := light.Vec3("_color")
	assert.True(t, ok)
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, color)

	_, ok = light.Vec3("classname")
	assert.False(t, ok)
}

func TestParseEntitiesErrors(t *testing.T) {
	tests := []string{
		`{ "classname" "light"`,
		`{ "classname" }`,
		`"classname" "light"`,
		`{ "classname "light" }`,
	}
	for _, tt := range tests {
		_, err := ParseEntities(tt)
		assert.Error(t, err, tt)
	}

	entities, err := ParseEntities("")
	assert.NoError(t, err)
	assert.Empty(t, entities)
}
