package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "generate", "migrate", "version"} {
		found, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}

func TestGenerateFlags(t *testing.T) {
	owner := generateCmd.Flags().Lookup("owner")
	require.NotNil(t, owner)
	assert.Equal(t, "o", owner.Shorthand)

	questions := generateCmd.Flags().Lookup("questions")
	require.NotNil(t, questions)
	assert.Equal(t, "0", questions.DefValue)

	assert.Error(t, generateCmd.Args(generateCmd, nil), "url argument is required")
}
