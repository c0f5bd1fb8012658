package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteVariables(t *testing.T) {
	t.Setenv("CALLISTO_TEST_TOKEN", "from-os")
	vars := []Variable{
		{Key: "API_URL", Value: "https://api.example.com"},
		{Key: "user", Value: "alice"},
		{Key: "user", Value: "bob"},
		{Key: "", Value: "ignored"},
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "simple", text: "{{API_URL}}/users", want: "https://api.example.com/users"},
		{name: "whitespace in braces", text: "{{ API_URL }}/users", want: "https://api.example.com/users"},
		{name: "last duplicate wins", text: "hi {{user}}", want: "hi bob"},
		{name: "unknown kept", text: "{{missing}}/x", want: "{{missing}}/x"},
		{name: "system env", text: "Bearer {{env:CALLISTO_TEST_TOKEN}}", want: "Bearer from-os"},
		{name: "unset system env kept", text: "{{env:CALLISTO_TEST_UNSET}}", want: "{{env:CALLISTO_TEST_UNSET}}"},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteVariables(tt.text, vars))
		})
	}
}

func TestMissingVariables(t *testing.T) {
	vars := []Variable{{Key: "API_URL", Value: "x"}}

	assert.Equal(t, []string{"token", "id"}, MissingVariables("{{API_URL}}/{{token}}/{{ id }}/{{token}}", vars))
	assert.Empty(t, MissingVariables("{{API_URL}}/plain", vars))
	assert.Equal(t, []string{"API_URL", "b"}, VariableReferences("{{API_URL}}{{b}}{{API_URL}}"))
}

func TestParseVariables(t *testing.T) {
	t.Setenv("CALLISTO_TEST_SECRET", "s3cret")

	tests := []struct {
		name    string
		yaml    string
		want    []Variable
		wantErr bool
	}{
		{
			name: "mapping keeps file order",
			yaml: "ZED: 1\nAPI_URL: http://localhost:3000\nTOKEN: \"{{env:CALLISTO_TEST_SECRET}}\"\n",
			want: []Variable{{Key: "ZED", Value: "1"}, {Key: "API_URL", Value: "http://localhost:3000"}, {Key: "TOKEN", Value: "s3cret"}},
		},
		{
			name: "list form allows duplicates",
			yaml: "- key: a\n  value: one\n- key: a\n  value: two\n",
			want: []Variable{{Key: "a", Value: "one"}, {Key: "a", Value: "two"}},
		},
		{
			name: "empty file",
			yaml: "",
			want: []Variable{},
		},
		{
			name:    "scalar rejected",
			yaml:    "just a string",
			wantErr: true,
		},
		{
			name:    "malformed",
			yaml:    "a: [b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVariables([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadVariables_RoundTrip(t *testing.T) {
	vars := []Variable{{Key: "a", Value: "1"}, {Key: "b", Value: "two words"}}
	data, err := MarshalVariables(vars)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dev.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	got, err := LoadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, vars, got)
}

func TestLoadVariables_MissingFile(t *testing.T) {
	_, err := LoadVariables(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read variables file")
}
