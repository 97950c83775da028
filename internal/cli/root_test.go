package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "bpkit", cmd.Use)
	assert.Contains(t, cmd.Long, "Sequoia")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "check", "decompose", "clarify", "analyze", "checklist"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestDecomposeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	decomposeCmd, _, err := cmd.Find([]string{"decompose"})
	require.NoError(t, err)

	for _, name := range []string{"interactive", "from-file", "from-pdf", "dry-run", "force"} {
		flag := decomposeCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
	}
}

func TestClarifyCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	clarifyCmd, _, err := cmd.Find([]string{"clarify"})
	require.NoError(t, err)

	sectionFlag := clarifyCmd.Flags().Lookup("section")
	require.NotNil(t, sectionFlag)
	assert.Equal(t, "", sectionFlag.DefValue)

	maxFlag := clarifyCmd.Flags().Lookup("max")
	require.NotNil(t, maxFlag)
	assert.Equal(t, "5", maxFlag.DefValue)
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	analyzeCmd, _, err := cmd.Find([]string{"analyze"})
	require.NoError(t, err)

	fixFlag := analyzeCmd.Flags().Lookup("fix")
	require.NotNil(t, fixFlag)
	assert.Equal(t, "false", fixFlag.DefValue)
}

func TestChecklistCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checklistCmd, _, err := cmd.Find([]string{"checklist"})
	require.NoError(t, err)

	reportFlag := checklistCmd.Flags().Lookup("report")
	require.NotNil(t, reportFlag)
	assert.Equal(t, "false", reportFlag.DefValue)

	forceFlag := checklistCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "check"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
