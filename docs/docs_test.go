package docs

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
)

func readDoc(t *testing.T) map[string]any {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "doc.json must be valid JSON")
	return doc
}

func TestReadDoc_Info(t *testing.T) {
	doc := readDoc(t)

	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "/api/v1", doc["basePath"])
	info := doc["info"].(map[string]any)
	assert.Equal(t, "Gym Ledger API", info["title"])
	assert.Equal(t, "1.0", info["version"])
	assert.Contains(t, info["description"], "meta.view_fresh")
}

func TestReadDoc_ReferencesResolve(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)
	definitions := readDoc(t)["definitions"].(map[string]any)

	refs := regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		assert.Contains(t, definitions, ref[1])
	}
}

func TestReadDoc_MoneyIsMinorUnits(t *testing.T) {
	definitions := readDoc(t)["definitions"].(map[string]any)
	money := definitions["valueobject.Money"].(map[string]any)["properties"].(map[string]any)

	assert.Equal(t, "integer", money["amount_minor"].(map[string]any)["type"])
	assert.Equal(t, "string", money["amount"].(map[string]any)["type"])
}
