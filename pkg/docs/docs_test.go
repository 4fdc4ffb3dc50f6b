package docs

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorlage-dev/vorlage/pkg/schema"
)

func testDefinition() schema.Definition {
	return schema.Definition{
		Name: "Post",
		Fields: []schema.Field{
			{Name: "id", Type: schema.TypeString, Mutability: schema.ServerOnly},
			{Name: "title", Type: schema.TypeString, Mutability: schema.RequiredOnCreate,
				Rules: schema.Rules{MinLen: 3, MaxLen: 128}},
			{Name: "content", Type: schema.TypeString, Mutability: schema.RequiredOnCreate},
		},
	}
}

func testBinder() *Binder {
	def := testDefinition()
	createShape := def.CreateInput()

	b := NewBinder()
	b.Bind("POST", "/posts", Operation{
		Summary:  "Create a post",
		Tag:      "posts",
		Security: Authenticated,
		Input:    &createShape,
		Responses: []Response{
			{Status: 201, Description: "Created", Shape: &def},
			{Status: 400, Description: "Validation failed"},
		},
	})
	b.Bind("GET", "/posts", Operation{
		Summary:   "List posts",
		Tag:       "posts",
		Security:  Public,
		Responses: []Response{{Status: 200, Description: "OK"}},
	})
	return b
}

func TestDocumentStructure(t *testing.T) {
	doc := testBinder().Document(Info{Title: "vorlage", Version: "1.0.0"})

	assert.Equal(t, "3.0.3", doc["openapi"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	posts, ok := paths["/posts"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, posts, "get")
	assert.Contains(t, posts, "post")

	components := doc["components"].(map[string]any)
	schemes := components["securitySchemes"].(map[string]any)
	assert.Contains(t, schemes, "bearerAuth")
	assert.Contains(t, schemes, "cookieAuth")
}

func TestOperationSecurityAndInput(t *testing.T) {
	doc := testBinder().Document(Info{Title: "vorlage"})
	posts := doc["paths"].(map[string]any)["/posts"].(map[string]any)

	create := posts["post"].(map[string]any)
	require.Contains(t, create, "security")
	require.Contains(t, create, "requestBody")

	list := posts["get"].(map[string]any)
	assert.NotContains(t, list, "security")
	assert.NotContains(t, list, "requestBody")

	body := create["requestBody"].(map[string]any)
	content := body["content"].(map[string]any)["application/json"].(map[string]any)
	props := content["schema"].(map[string]any)["properties"].(map[string]any)

	// The input schema mirrors the derived create shape.
	assert.NotContains(t, props, "id")
	title := props["title"].(map[string]any)
	assert.Equal(t, 3, title["minLength"])
	assert.Equal(t, 128, title["maxLength"])

	required := content["schema"].(map[string]any)["required"].([]string)
	assert.ElementsMatch(t, []string{"title", "content"}, required)
}

func TestSecretFieldsAreWriteOnly(t *testing.T) {
	def := schema.Definition{
		Name: "User",
		Fields: []schema.Field{
			{Name: "password", Type: schema.TypeString, Mutability: schema.RequiredOnCreate,
				Rules: schema.Rules{MinLen: 8, MaxLen: 128}, Secret: true},
		},
	}
	shape := def.CreateInput()

	input := shapeSchema(shape)
	password := input["properties"].(map[string]any)["password"].(map[string]any)
	assert.Equal(t, "password", password["format"])
	assert.Equal(t, true, password["writeOnly"])

	// Responses never show secret fields.
	response := definitionSchema(def)
	assert.Empty(t, response["properties"].(map[string]any))
}

func TestDocumentIsDeterministic(t *testing.T) {
	a, err := json.Marshal(testBinder().Document(Info{Title: "vorlage"}))
	require.NoError(t, err)
	b, err := json.Marshal(testBinder().Document(Info{Title: "vorlage"}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHandlerServesViewerAndDocument(t *testing.T) {
	handler := Handler(testBinder(), Info{Title: "vorlage", Version: "1.0.0"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/docs", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/docs/api.json")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/docs/api.json", nil))
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "vorlage", doc["info"].(map[string]any)["title"])
}
