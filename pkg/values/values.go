// Package values renders a persisted payload as Helm style user values.
package values

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	sigsyaml "sigs.k8s.io/yaml"
)

// ConfigMapKey is the data key holding the values document.
const ConfigMapKey = "values"

// YAML encodes payload with sorted keys. A nil payload becomes an empty
// mapping.
func YAML(payload any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("values: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("values: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// ConfigMap wraps payload in a user-values ConfigMap.
func ConfigMap(name, namespace string, payload any) (*corev1.ConfigMap, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("values: configmap name is required")
	}
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return nil, fmt.Errorf("values: invalid configmap name %q: %s", name, strings.Join(errs, "; "))
	}
	namespace = strings.TrimSpace(namespace)
	if namespace != "" {
		if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
			return nil, fmt.Errorf("values: invalid namespace %q: %s", namespace, strings.Join(errs, "; "))
		}
	}

	doc, err := YAML(payload)
	if err != nil {
		return nil, err
	}
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Data: map[string]string{ConfigMapKey: string(doc)},
	}, nil
}

// Manifest renders cm as a YAML manifest.
func Manifest(cm *corev1.ConfigMap) ([]byte, error) {
	if cm == nil {
		return nil, errors.New("values: configmap is nil")
	}
	out, err := sigsyaml.Marshal(cm)
	if err != nil {
		return nil, fmt.Errorf("values: encode manifest: %w", err)
	}
	return out, nil
}
