package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	p := Get("archive")
	assert.Equal(t, "archive", p.Name)
	assert.Equal(t, 92, p.Quality)

	assert.Equal(t, 80, Get(DefaultName).Quality)
}

func TestGet_UnknownFallsBackKeepingName(t *testing.T) {
	p := Get("mystery")
	assert.Equal(t, "mystery", p.Name)
	assert.Equal(t, Get(DefaultName).Quality, p.Quality)
	assert.False(t, Known("mystery"))
	assert.True(t, Known("web"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"tiny", "web", "default", "archive"}, Names())
}
