package values

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	sigsyaml "sigs.k8s.io/yaml"
)

func TestYAML(t *testing.T) {
	out, err := YAML(map[string]any{
		"b": map[string]any{"list": []any{"x", float64(2)}},
		"a": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "a: true\nb:\n  list:\n    - x\n    - 2\n", string(out))
}

func TestYAML_NilPayload(t *testing.T) {
	out, err := YAML(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestConfigMap(t *testing.T) {
	cm, err := ConfigMap("demo-user-values", "org-acme", map[string]any{"name": "demo"})
	require.NoError(t, err)
	assert.Equal(t, "demo-user-values", cm.Name)
	assert.Equal(t, "org-acme", cm.Namespace)
	assert.Equal(t, "name: demo\n", cm.Data[ConfigMapKey])

	manifest, err := Manifest(cm)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(manifest), "apiVersion: v1\n"))

	var decoded corev1.ConfigMap
	require.NoError(t, sigsyaml.Unmarshal(manifest, &decoded))
	assert.Equal(t, cm.Data, decoded.Data)
	assert.Equal(t, "ConfigMap", decoded.Kind)
}

func TestConfigMap_InvalidNames(t *testing.T) {
	_, err := ConfigMap("", "default", nil)
	assert.Error(t, err)

	_, err = ConfigMap("Not_Valid", "default", nil)
	assert.Error(t, err)

	_, err = ConfigMap("ok", "bad.namespace", nil)
	assert.Error(t, err)

	_, err = Manifest(nil)
	assert.Error(t, err)
}
