package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServerURL(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		host     string
		version  string
		want     string
	}{
		{"with version", "https", "api.example.com", "v2", "https://api.example.com/v2"},
		{"without version", "https", "api.example.com", "", "https://api.example.com"},
		{"http", "http", "localhost:8080", "v1", "http://localhost:8080/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(tt.protocol, tt.host, tt.version)
			assert.Equal(t, tt.want, s.URL)
			assert.Equal(t, tt.protocol, s.Protocol)
			assert.Equal(t, tt.host, s.Host)
			assert.Equal(t, tt.version, s.Version)
		})
	}
}
