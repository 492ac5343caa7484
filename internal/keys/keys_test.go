package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormKeyMap(t *testing.T) {
	km := FormKeyMap()

	assert.Equal(t, []string{"ctrl+c"}, km.Quit.Keys())
	assert.Contains(t, km.Select.Up.Keys(), "k")
	assert.Contains(t, km.Select.Down.Keys(), "j")
	assert.True(t, km.Select.Submit.Enabled())
}
