package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		Version: CurrentVersion,
		Workspaces: []Workspace{
			{
				ID:   "ws1",
				Name: "Personal",
				Collections: []Collection{
					{
						ID:   "c1",
						Name: "Auth",
						Requests: []Request{
							{ID: "r1", Name: "Login", ReqType: "http", Method: "POST", Curl: `curl -X POST "https://api.example.com/login" -d '{"u":"a"}'`},
						},
					},
					{ID: "c2", Name: "Empty", Requests: []Request{}},
				},
			},
			{ID: "ws2", Name: "Work", Collections: []Collection{}},
		},
		Environments: []Environment{
			{ID: "e1", Name: "dev", Variables: []Variable{{Key: "API", Value: "http://localhost"}, {Key: "API", Value: "dup"}}},
			{ID: "e2", Name: "prod", Variables: []Variable{}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	docs := map[string]*Document{
		"empty":  NewDocument(),
		"sample": sampleDocument(),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(doc)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, doc, decoded)

			again, err := Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestEncode_EmptySequencesAreArrays(t *testing.T) {
	data, err := Encode(&Document{Version: "1.0"})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"version\": \"1.0\",\n  \"workspaces\": [],\n  \"environments\": []\n}", string(data))
	assert.NotContains(t, string(data), "null")
}

func TestEncode_KeepsURLCharactersLiteral(t *testing.T) {
	doc := NewDocument()
	doc.Workspaces = append(doc.Workspaces, Workspace{
		ID:   "w",
		Name: "<dev> & staging",
		Collections: []Collection{{ID: "c", Name: "C", Requests: []Request{{
			ID: "r", Name: "R", ReqType: "curl", Method: "GET",
			Curl: `curl -X GET "https://api.example.com/users?page=1&limit=10"`,
		}}}},
	})

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "<dev> & staging"`)
	assert.Contains(t, string(data), `page=1&limit=10`)
	assert.NotContains(t, string(data), `\u0026`)
	assert.False(t, strings.HasSuffix(string(data), "\n"))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestEncode_Nil(t *testing.T) {
	_, err := Encode(nil)
	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
}

func TestDecode_DefaultFilling(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *Document
	}{
		{
			name: "version only",
			json: `{ "version": "1.0" }`,
			want: NewDocument(),
		},
		{
			name: "no environments",
			json: `{"version": "1.0", "workspaces": [{"id": "w", "name": "W"}]}`,
			want: &Document{
				Version:      "1.0",
				Workspaces:   []Workspace{{ID: "w", Name: "W", Collections: []Collection{}}},
				Environments: []Environment{},
			},
		},
		{
			name: "no workspaces, environment without variables",
			json: `{"version": "1.0", "environments": [{"id": "e", "name": "dev"}]}`,
			want: &Document{
				Version:      "1.0",
				Workspaces:   []Workspace{},
				Environments: []Environment{{ID: "e", Name: "dev", Variables: []Variable{}}},
			},
		},
		{
			name: "collection without requests",
			json: `{"version": "1.0", "workspaces": [{"id": "w", "name": "W", "collections": [{"id": "c", "name": "C"}]}]}`,
			want: &Document{
				Version:      "1.0",
				Workspaces:   []Workspace{{ID: "w", Name: "W", Collections: []Collection{{ID: "c", Name: "C", Requests: []Request{}}}}},
				Environments: []Environment{},
			},
		},
		{
			name: "unknown fields ignored",
			json: `{"version": "1.0", "theme": "dark"}`,
			want: NewDocument(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		errMsg  string
		problem bool
	}{
		{name: "malformed", json: `{"version": "1.0"`, errMsg: "invalid JSON"},
		{name: "empty input", json: ``, errMsg: "invalid JSON"},
		{name: "invalid utf-8", json: "{\"version\": \"1.0\", \"workspaces\": [{\"id\": \"w\", \"name\": \"caf\xe9\"}]}", errMsg: "not valid UTF-8"},
		{name: "not an object", json: `[]`, problem: true},
		{name: "missing version", json: `{"workspaces": []}`, problem: true},
		{name: "version wrong type", json: `{"version": 1}`, problem: true},
		{name: "workspaces wrong shape", json: `{"version": "1.0", "workspaces": {}}`, problem: true},
		{name: "workspaces null", json: `{"version": "1.0", "workspaces": null}`, problem: true},
		{name: "workspace missing id", json: `{"version": "1.0", "workspaces": [{"name": "x"}]}`, problem: true},
		{
			name:    "request missing curl",
			json:    `{"version": "1.0", "workspaces": [{"id": "w", "name": "W", "collections": [{"id": "c", "name": "C", "requests": [{"id": "r", "name": "R", "req_type": "http", "method": "GET"}]}]}]}`,
			problem: true,
		},
		{
			name:    "variable value wrong type",
			json:    `{"version": "1.0", "environments": [{"id": "e", "name": "dev", "variables": [{"key": "k", "value": 3}]}]}`,
			problem: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.json))
			require.Error(t, err)
			assert.Nil(t, doc)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "want *DecodeError, got %T", err)
			if tt.problem {
				assert.NotEmpty(t, de.Problems)
			}
			if tt.errMsg != "" {
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), "error = %q", err.Error())
			}
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	doc := sampleDocument()
	cp := doc.Clone()
	require.Equal(t, doc, cp)

	cp.Workspaces[0].Collections[0].Requests[0].Name = "changed"
	cp.Environments[0].Variables[0].Value = "changed"

	assert.Equal(t, "Login", doc.Workspaces[0].Collections[0].Requests[0].Name)
	assert.Equal(t, "http://localhost", doc.Environments[0].Variables[0].Value)
}
