package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/internal/console"
	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
)

func TestDemoScriptUsesOnlyKeypadKeys(t *testing.T) {
	tour, err := demoScript()
	require.NoError(t, err)

	keys, rejected := console.ParseKeys(tour)
	assert.Empty(t, rejected)
	// ten entries of five digits and a confirm, plus four menu keys
	assert.Len(t, keys, 10*6+4)
	assert.Equal(t, 1, strings.Count(tour, "-"))
	assert.Equal(t, 3, strings.Count(tour, "+"))
}

func TestWrongForDiffers(t *testing.T) {
	for _, s := range []string{"00000", "12345", "99999"} {
		c := credential.MustParse(s)
		wrong := wrongFor(c)
		assert.False(t, c.Equal(wrong), s)
		assert.NoError(t, wrong.Validate())
		assert.Equal(t, c.Reveal()[1:], wrong.Reveal()[1:])
	}
}
