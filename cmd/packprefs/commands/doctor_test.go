package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packprefs/internal/doctor"
	"github.com/thoreinstein/packprefs/internal/errors"
)

type noClients struct{}

func (noClients) Prefixes() ([]string, error) { return nil, nil }

func stubDoctorDiscoverer(t *testing.T) {
	t.Helper()
	orig := newDoctorDiscoverer
	newDoctorDiscoverer = func(*slog.Logger) doctor.Discoverer { return noClients{} }
	t.Cleanup(func() { newDoctorDiscoverer = orig })
}

func TestDoctor_Healthy(t *testing.T) {
	stubDoctorDiscoverer(t)
	f := newFixture(t, "", "core_char_1.dat", "core_user_2.dat")

	out, err := execute(t, "", f.args("doctor", "--all")...)
	require.NoError(t, err)

	assert.Contains(t, out, "[settings] settings-dir: 1 character and 1 account files")
	assert.Contains(t, out, "[backup] backup-location")
	assert.Contains(t, out, "0 warnings, 0 errors")
}

func TestDoctor_JSON(t *testing.T) {
	stubDoctorDiscoverer(t)
	f := newFixture(t, "", "core_char_1.dat")

	out, err := execute(t, "", f.args("doctor", "--json")...)
	require.NoError(t, err)

	var report doctor.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 5)
	assert.Equal(t, "config-file", report.Results[0].Name)
	assert.Equal(t, doctor.SeverityPass, report.Results[0].Status)
}

func TestDoctor_EmptySettingsDirWarns(t *testing.T) {
	stubDoctorDiscoverer(t)
	f := newFixture(t, "")

	out, err := execute(t, "", f.args("doctor")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDoctorWarnings))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, out, "hint:")
}

func TestDoctor_InvalidConfigErrors(t *testing.T) {
	stubDoctorDiscoverer(t)
	f := newFixture(t, "", "core_char_1.dat")
	require.NoError(t, os.WriteFile(f.config, []byte("[name_lookup]\ntimeout_seconds = 0\n"), 0o600))

	out, err := execute(t, "", f.args("doctor")...)
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.Contains(t, out, "[config] config-file")
}

func TestDoctor_FlagsMutuallyExclusive(t *testing.T) {
	stubDoctorDiscoverer(t)
	f := newFixture(t, "", "core_char_1.dat")

	_, err := execute(t, "", f.args("doctor", "--json", "--all")...)
	require.Error(t, err)
}
