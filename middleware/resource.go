package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// unknownService is the default service name when detection fails
const unknownService = "unknown-service"

// namespaceFile is mounted into every pod by Kubernetes.
const namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// detectServiceInfo resolves service name and namespace, in priority order:
// OTEL_SERVICE_NAME, then the pod name with its two hash suffixes removed
// ("profile-75c98b4b9c-kdv2n" -> "profile"), then unknownService.
func detectServiceInfo() (serviceName, namespace string) {
	serviceName = os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName, _ = os.Hostname()
		}
		serviceName = serviceFromPodName(podName)
	}
	if serviceName == "" {
		serviceName = unknownService
	}

	if attrs := os.Getenv("OTEL_RESOURCE_ATTRIBUTES"); attrs != "" {
		for _, attr := range strings.Split(attrs, ",") {
			if key, value, ok := strings.Cut(attr, "="); ok && key == "service.namespace" {
				return serviceName, value
			}
		}
	}
	if data, err := os.ReadFile(namespaceFile); err == nil {
		return serviceName, strings.TrimSpace(string(data))
	}
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return serviceName, ns
	}
	return serviceName, "default"
}

func serviceFromPodName(podName string) string {
	if podName == "" {
		return ""
	}
	parts := strings.Split(podName, "-")
	if len(parts) >= 3 {
		return strings.Join(parts[:len(parts)-2], "-")
	}
	return parts[0]
}

// CreateResource creates an OpenTelemetry resource with auto-detected attributes.
// On partial detection failure a minimal resource is returned together with the error.
func CreateResource(ctx context.Context) (*resource.Resource, error) {
	serviceName, namespace := detectServiceInfo()

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
		),
	)
	if err != nil {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	for _, attr := range res.Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			return attr.Value.AsString()
		}
	}
	return unknownService
}
