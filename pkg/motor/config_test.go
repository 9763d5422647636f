package motor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsurely/motor-go/pkg/motor"
)

func TestConfig_BaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		config         motor.Config
		wantBase       string
		wantTelematics string
		wantErr        error
	}{
		{
			name:           "region",
			config:         motor.Config{Region: motor.RegionEU1},
			wantBase:       "https://eu-1.nsurely-motor.com/v1/api",
			wantTelematics: "https://eu-1.nsurely-motor.com/v1/telematics",
		},
		{
			name:           "url overrides region",
			config:         motor.Config{Region: motor.RegionME1, URL: "https://dev.example.com/v1/api//"},
			wantBase:       "https://dev.example.com/v1/api",
			wantTelematics: "https://dev.example.com/v1/telematics",
		},
		{
			name:           "url without scheme",
			config:         motor.Config{URL: "localhost:8080"},
			wantBase:       "https://localhost:8080",
			wantTelematics: "https://localhost:8080/telematics",
		},
		{
			name:           "explicit telematics url",
			config:         motor.Config{Region: motor.RegionUS1, TelematicsURL: "http://ingest.local/"},
			wantBase:       "https://us-1.nsurely-motor.com/v1/api",
			wantTelematics: "http://ingest.local",
		},
		{
			name:    "neither",
			config:  motor.Config{},
			wantErr: motor.ErrRegionOrURLRequired,
		},
		{
			name:    "unknown region",
			config:  motor.Config{Region: "eu-9"},
			wantErr: motor.ErrInvalidRegion,
		},
		{
			name:    "url without host",
			config:  motor.Config{URL: "https://"},
			wantErr: motor.ErrInvalidURL,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			base, err := testCase.config.BaseURL()
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				assert.True(t, motor.IsConfigError(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.wantBase, base)

			telematics, err := testCase.config.ResolveTelematicsURL()
			require.NoError(t, err)
			assert.Equal(t, testCase.wantTelematics, telematics)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	base := func(mutate func(*motor.Config)) *motor.Config {
		config := &motor.Config{OrgID: "org-1", Region: motor.RegionEU1}
		mutate(config)

		return config
	}

	tests := []struct {
		name    string
		config  *motor.Config
		wantErr error
	}{
		{name: "nil", config: nil, wantErr: motor.ErrConfigRequired},
		{name: "public", config: base(func(*motor.Config) {})},
		{name: "blank org", config: base(func(c *motor.Config) { c.OrgID = "  " }), wantErr: motor.ErrOrgIDRequired},
		{name: "api key", config: base(func(c *motor.Config) { c.APIKey, c.APISecret = "k", "s" })},
		{name: "secret only", config: base(func(c *motor.Config) { c.APISecret = "s" }), wantErr: motor.ErrAPIKeyRequired},
		{name: "blank secret", config: base(func(c *motor.Config) { c.APIKey, c.APISecret = "k", " " }), wantErr: motor.ErrAPISecretRequired},
		{name: "session", config: base(func(c *motor.Config) { c.Email, c.Password = "a@b.c", "pw" })},
		{name: "password only", config: base(func(c *motor.Config) { c.Password = "pw" }), wantErr: motor.ErrEmailRequired},
		{name: "driver", config: base(func(c *motor.Config) { c.Email, c.Password, c.AuthType = "a@b.c", "pw", motor.AuthTypeDriver })},
		{name: "bad auth type", config: base(func(c *motor.Config) { c.AuthType = "fleet" }), wantErr: motor.ErrInvalidAuthType},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.config.Validate()
			if testCase.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	config := &motor.Config{}
	assert.Equal(t, motor.DefaultTimeout, config.EffectiveTimeout())
	assert.Equal(t, 10*time.Second, config.EffectiveTimeout())
	assert.Equal(t, motor.AuthTypeUser, config.EffectiveAuthType())
	assert.False(t, config.HasAPIKey())
	assert.False(t, config.HasSession())

	config.Timeout = time.Second
	config.Session = &motor.SessionToken{AccessToken: "a"}
	assert.Equal(t, time.Second, config.EffectiveTimeout())
	assert.True(t, config.HasSession())

	for _, region := range motor.Regions {
		assert.True(t, region.Valid())
	}

	assert.False(t, motor.Region("EU-1").Valid())
}
