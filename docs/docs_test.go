package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Info     map[string]any             `json:"info"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "/api", doc.BasePath)
	assert.Equal(t, "Library API", doc.Info["title"])
	assert.Equal(t, "Library management service: members, librarians, books and loans.", doc.Info["description"])
	assert.Contains(t, doc.Paths, "/")
	assert.Contains(t, doc.Paths, "/readyz")
}
