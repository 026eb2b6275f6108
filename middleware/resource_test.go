package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceFromPodName(t *testing.T) {
	tests := map[string]string{
		"profile-75c98b4b9c-kdv2n":         "profile",
		"profile-service-75c98b4b9c-kdv2n": "profile-service",
		"profile":                          "profile",
		"":                                 "",
	}
	for pod, want := range tests {
		assert.Equal(t, want, serviceFromPodName(pod), pod)
	}
}

func TestCreateResourcePrefersOtelServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "profile-service")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "service.namespace=people")

	res, _ := CreateResource(context.Background())

	assert.Equal(t, "profile-service", GetServiceName(res))
}
