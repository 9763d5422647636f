package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

func useConfigFile(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.Set("config", path)

	return path
}

func TestConfigSetUnsetClear(t *testing.T) { //nolint:paralleltest // viper is global
	path := useConfigFile(t)

	out, err := runCommand(t, newConfigSetCommand(), "timeout", "30")
	require.NoError(t, err)
	assert.Equal(t, "Set timeout to 30s\n", out)

	_, err = runCommand(t, newConfigSetCommand(), "Region", "US-1")
	require.NoError(t, err)

	_, err = runCommand(t, newConfigSetCommand(), "url", "https://api.example.com/v1/api/")
	require.NoError(t, err)

	stored, err := readConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "30s", stored.Timeout)
	assert.Equal(t, "us-1", stored.Region)
	assert.Equal(t, "https://api.example.com/v1/api", stored.URL)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	out, err = runCommand(t, newConfigUnsetCommand(), "region")
	require.NoError(t, err)
	assert.Equal(t, "Unset region\n", out)

	stored, err = readConfigFile(path)
	require.NoError(t, err)
	assert.Empty(t, stored.Region)
	assert.Equal(t, "30s", stored.Timeout)

	out, err = runCommand(t, newConfigClearCommand())
	require.NoError(t, err)
	assert.Equal(t, "Cleared all configuration\n", out)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	// Clearing twice is fine.
	_, err = runCommand(t, newConfigClearCommand())
	require.NoError(t, err)
}

func TestConfigSetRejectsBadInput(t *testing.T) { //nolint:paralleltest // viper is global
	useConfigFile(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "secret", args: []string{"api-secret", "s3cret"}, wantErr: constants.ErrSecretKeyNotAllowed},
		{name: "password", args: []string{"password", "pw"}, wantErr: constants.ErrSecretKeyNotAllowed},
		{name: "unknown key", args: []string{"colour", "blue"}, wantErr: constants.ErrUnknownConfigKey},
		{name: "region", args: []string{"region", "ap-9"}, wantErr: motor.ErrInvalidRegion},
		{name: "auth type", args: []string{"auth-type", "admin"}, wantErr: motor.ErrInvalidAuthType},
		{name: "output", args: []string{"output", "xml"}, wantErr: constants.ErrInvalidOutput},
		{name: "session store", args: []string{"session-store", "vault"}, wantErr: constants.ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, newConfigSetCommand(), tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := runCommand(t, newConfigSetCommand(), "timeout", "soon")
	require.Error(t, err)

	_, err = runCommand(t, newConfigUnsetCommand(), "token")
	require.ErrorIs(t, err, constants.ErrSecretKeyNotAllowed)
}

func TestConfigShow_MasksSecret(t *testing.T) { //nolint:paralleltest // viper is global
	useConfigFile(t)
	viper.Set(keyOrgID, "org-1")
	viper.Set(keyAPISecret, "s3cret")
	viper.Set(keyOutput, constants.FormatTable)

	out, err := runCommand(t, newConfigShowCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "org-1")
	assert.Contains(t, out, constants.MaskedSecret)
	assert.NotContains(t, out, "s3cret")
}

func TestReadConfigFile_CoercesValues(t *testing.T) { //nolint:paralleltest // shares the package with viper tests
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("org-id: 1234\ntimeout: 15\nregion: eu-1\nunknown: true\n"), 0o600))

	config, err := readConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1234", config.OrgID)
	assert.Equal(t, "15", config.Timeout)
	assert.Equal(t, "eu-1", config.Region)

	timeout, err := config.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)

	missing, err := readConfigFile(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, missing)

	require.NoError(t, os.WriteFile(path, []byte("org-id: [unterminated\n"), 0o600))

	_, err = readConfigFile(path)
	require.Error(t, err)
}

func TestTimeoutDuration(t *testing.T) { //nolint:paralleltest // shares the package with viper tests
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "", want: 0},
		{value: "10", want: 10 * time.Second},
		{value: "2.5", want: 2500 * time.Millisecond},
		{value: "1m30s", want: 90 * time.Second},
		{value: "later", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := (&Config{Timeout: tt.value}).TimeoutDuration()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRecordFilter(t *testing.T) { //nolint:paralleltest // shares the package with viper tests
	filter, err := newRecordFilter("  ")
	require.NoError(t, err)
	assert.Nil(t, filter)

	matched, err := filter.Match(map[string]any{})
	require.NoError(t, err)
	assert.True(t, matched, "a nil filter accepts everything")

	_, err = newRecordFilter("vehicleCount +")
	require.ErrorIs(t, err, constants.ErrInvalidFilter)

	_, err = newRecordFilter(`"not a bool"`)
	require.ErrorIs(t, err, constants.ErrInvalidFilter)

	filter, err = newRecordFilter(`status == "failed" && (amount ?? 0) >= 1000`)
	require.NoError(t, err)

	events := []motor.BillingEvent{
		{ID: "be-1", Status: motor.BillingEventFailed, Amount: 1500},
		{ID: "be-2", Status: motor.BillingEventPaid, Amount: 5000},
		{ID: "be-3", Status: motor.BillingEventFailed},
	}

	kept, err := filterRecords(filter, events, nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "be-1", kept[0].ID)
}
