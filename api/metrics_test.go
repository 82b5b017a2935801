package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoutePathCollapsesObjectIDs(t *testing.T) {
	assert.Equal(t, "/api/v1/emergency/{id}",
		normalizeRoutePath("/api/v1/emergency/507f1f77bcf86cd799439011"))
	assert.Equal(t, "/api/v1/emergency/{id}/status",
		normalizeRoutePath("/api/v1/emergency/507f1f77bcf86cd799439011/status"))
	assert.Equal(t, "/api/v1/ambulance/{id}/history",
		normalizeRoutePath("/api/v1/ambulance/64b0c1f2a1b2c3d4e5f60718/history"))
}

func TestNormalizeRoutePathCollapsesUUIDs(t *testing.T) {
	assert.Equal(t, "/api/v1/chatbot/session/{id}",
		normalizeRoutePath("/api/v1/chatbot/session/4b6c9a1e-0f3d-4c2b-9e8a-1d2c3b4a5f60"))
}

func TestNormalizeRoutePathLeavesStaticPaths(t *testing.T) {
	assert.Equal(t, "/api/v1/emergencies", normalizeRoutePath("/api/v1/emergencies"))
	assert.Equal(t, "/health", normalizeRoutePath("/health"))
	assert.Equal(t, "/api/v1/camps", normalizeRoutePath("/api/v1/camps/"))
}

func TestSkipMetricsPath(t *testing.T) {
	assert.True(t, skipMetricsPath("/health"))
	assert.True(t, skipMetricsPath("/api/v1/metrics/summary"))
	assert.True(t, skipMetricsPath("/socket.io/?EIO=4"))
	assert.False(t, skipMetricsPath("/api/v1/emergencies"))
}
