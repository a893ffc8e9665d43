package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	Host  string `json:"host" validate:"required"`
	Port  int    `yaml:"port" validate:"gte=1,lte=65535"`
	Label string `json:"-" validate:"required"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(&target{Host: "localhost", Port: 3306, Label: "x"}))

	err := Validate(&target{Port: 70000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is a required field")
	assert.Contains(t, err.Error(), "port must be")
	assert.Contains(t, err.Error(), "Label is a required field")
}

func TestValidate_InvalidInput(t *testing.T) {
	var missing *target
	for name, input := range map[string]func() error{
		"nil pointer": func() error { return Validate(missing) },
		"not a struct": func() error { return Validate(42) },
	} {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { err = input() })

			var invalid *validator.InvalidValidationError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSSLConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *SSLConfig
		wantErr string
	}{
		{name: "nil", config: nil, wantErr: "'ssl' config is required"},
		{name: "missing mode", config: &SSLConfig{}, wantErr: "'ssl.mode' is required"},
		{name: "unknown mode", config: &SSLConfig{Mode: "prefer"}, wantErr: "unsupported 'ssl.mode': prefer"},
		{name: "disable", config: &SSLConfig{Mode: SSLModeDisable}},
		{name: "require", config: &SSLConfig{Mode: SSLModeRequire}},
		{name: "verify-full without ca", config: &SSLConfig{Mode: SSLModeVerifyFull}, wantErr: "'ssl.server_ca' is required"},
		{name: "verify-ca with ca", config: &SSLConfig{Mode: SSLModeVerifyCA, ServerCA: "ca"}},
		{name: "key without cert", config: &SSLConfig{Mode: SSLModeRequire, ClientKey: "key"}, wantErr: "must be provided together"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 1, Ternary(true, 1, 2))
	assert.Equal(t, 2, Ternary(false, 1, 2))

	assert.True(t, ExistInArray([]string{"a", "b"}, "b"))
	assert.False(t, ExistInArray([]string{"a", "b"}, "c"))
	assert.False(t, ExistInArray(nil, 0))

	first, second := ULID(), ULID()
	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}
