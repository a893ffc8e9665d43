package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{name: "url", config: Config{Host: "http://192.168.0.83:9200"}, expected: "http://192.168.0.83:9200"},
		{name: "host and port", config: Config{Host: " 192.168.0.83:9200/ "}, expected: "http://192.168.0.83:9200"},
		{name: "separate port", config: Config{Host: "es.local", Port: 9201}, expected: "http://es.local:9201"},
		{name: "port in host wins", config: Config{Host: "es.local:9200", Port: 9201}, expected: "http://es.local:9200"},
		{name: "ssl", config: Config{Host: "es.local", Port: 443, UseSSL: true}, expected: "https://es.local:443"},
		{name: "https url with ssl", config: Config{Host: "https://es.local:9200", UseSSL: true}, expected: "https://es.local:9200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.config.Validate())
			address, err := tt.config.Address()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, address)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "empty host", config: Config{}},
		{name: "https without ssl", config: Config{Host: "https://es.local:9200"}},
		{name: "username without password", config: Config{Host: "es.local:9200", Username: "elastic"}},
		{name: "port out of range", config: Config{Host: "es.local", Port: 70000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.config.Validate())
		})
	}
}
