package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "create-superadmin"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCreateSuperAdmin_RequiresEmailAndPassword(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"create-superadmin", "--email", "root@example.com"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password")
}

func TestUUIDGenerator(t *testing.T) {
	g := &uuidGenerator{}
	assert.NotEqual(t, g.NewID(), g.NewID())
	assert.Len(t, g.NewID(), 36)
}
