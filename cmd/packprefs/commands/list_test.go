package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packprefs/internal/errors"
)

const namesConfig = `[character_names]
90000001 = "Alpha Pilot"
`

func TestList_Text(t *testing.T) {
	f := newFixture(t, namesConfig,
		"core_char_90000001.dat",
		"core_char_90000002.dat",
		"core_char__.dat",
		"core_user_1234.dat",
		"notes.txt",
	)

	out, err := execute(t, "", f.args("list")...)
	require.NoError(t, err)

	assert.Contains(t, out, f.dir)
	assert.Contains(t, out, "Characters (3)")
	assert.Contains(t, out, "Accounts (1)")
	assert.Contains(t, out, "Alpha Pilot")
	assert.Contains(t, out, "Character 90000002")
	assert.Contains(t, out, "Default (new characters)")
	assert.Contains(t, out, "Account 1234")
	assert.NotContains(t, out, "notes.txt")
}

func TestList_AccountsFirstWhenOnlyOneCharacter(t *testing.T) {
	f := newFixture(t, "", "core_char_1.dat", "core_user_10.dat", "core_user_11.dat")

	out, err := execute(t, "", f.args("list")...)
	require.NoError(t, err)

	accounts := strings.Index(out, "Accounts (")
	characters := strings.Index(out, "Characters (")
	require.NotEqual(t, -1, accounts)
	require.NotEqual(t, -1, characters)
	assert.Less(t, accounts, characters)
}

func TestList_JSON(t *testing.T) {
	f := newFixture(t, namesConfig, "core_char_90000001.dat", "core_char_90000002.dat")

	out, err := execute(t, "", f.args("list", "--json")...)
	require.NoError(t, err)

	var got listOutput
	require.NoError(t, json.NewDecoder(bytes.NewBufferString(out)).Decode(&got))

	assert.Equal(t, f.dir, got.SettingsDir)
	require.Len(t, got.Characters, 2)
	assert.Equal(t, "Alpha Pilot", got.Characters[0].Label)
	assert.Equal(t, uint64(90000002), got.Characters[1].File.ID)
	assert.NotNil(t, got.Accounts)
	assert.Empty(t, got.Accounts)
}

func TestList_RecordsSettingsDirInConfig(t *testing.T) {
	f := newFixture(t, "", "core_char_1.dat")

	_, err := execute(t, "", f.args("list")...)
	require.NoError(t, err)

	out, err := execute(t, "", "--config", f.config, "config", "get", "last_settings_dir")
	require.NoError(t, err)
	assert.Equal(t, f.dir, strings.TrimSpace(out))
}

func TestList_MissingDir(t *testing.T) {
	f := newFixture(t, "")

	_, err := execute(t, "", "--dir", f.dir+"_missing", "--config", f.config, "list")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestList_MissingExplicitConfig(t *testing.T) {
	f := newFixture(t, "", "core_char_1.dat")

	_, err := execute(t, "", "--dir", f.dir, "--config", f.config+".missing", "list")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}
