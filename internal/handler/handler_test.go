package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathID(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		prefix    string
		expected  int64
		expectErr bool
	}{
		{
			name:     "Plain id",
			path:     "/api/orders/11",
			prefix:   "/api/orders",
			expected: 11,
		},
		{
			name:     "Id with trailing sub-path",
			path:     "/api/orders/11/status",
			prefix:   "/api/orders",
			expected: 11,
		},
		{
			name:     "Trailing slash",
			path:     "/api/appointments/5/",
			prefix:   "/api/appointments",
			expected: 5,
		},
		{
			name:      "Missing id",
			path:      "/api/orders/",
			prefix:    "/api/orders",
			expectErr: true,
		},
		{
			name:      "Non-numeric id",
			path:      "/api/orders/abc",
			prefix:    "/api/orders",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := pathID(tt.path, tt.prefix)

			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}
