package examplegen_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openapi2java/openapi2java/internal/model"
	"github.com/openapi2java/openapi2java/internal/oasdoc"
	"github.com/openapi2java/openapi2java/internal/render/examplegen"
)

func build(t *testing.T, doc string) *model.Model {
	t.Helper()
	root, err := oasdoc.ParseTree([]byte(doc))
	require.NoError(t, err)
	m, err := model.Build(&oasdoc.Document{Name: "test", Root: root}, model.Options{})
	require.NoError(t, err)
	return m
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRenderValueSelection(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Ticket:
      type: object
      properties:
        id: {type: string, example: TK-1001}
        status:
          type: string
          enum: [open, closed]
        priority:
          type: integer
          default: 3
        title: {type: string}
        createdAt: {type: string, format: date-time}
        contact: {type: string, format: email}
        count: {type: integer}
        resolved: {type: boolean}
`)
	data, err := examplegen.Render(m.Node("Ticket"))
	require.NoError(t, err)
	got := decode(t, data)

	assert.Equal(t, "TK-1001", got["id"], "explicit example wins")
	assert.Equal(t, "open", got["status"], "first enum value")
	assert.Equal(t, float64(3), got["priority"], "declared default")
	assert.Equal(t, "example_string", got["title"])
	assert.Equal(t, "2025-01-01T00:00:00Z", got["createdAt"])
	assert.Equal(t, "user@example.com", got["contact"])
	assert.Equal(t, float64(1), got["count"])
	assert.Equal(t, true, got["resolved"])
}

func TestRenderPreservesFieldOrder(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Thing:
      type: object
      properties:
        zulu: {type: string}
        alpha: {type: string}
        mike: {type: string}
`)
	data, err := examplegen.Render(m.Node("Thing"))
	require.NoError(t, err)
	s := string(data)
	zi, ai, mi := strings.Index(s, "zulu"), strings.Index(s, "alpha"), strings.Index(s, "mike")
	assert.Less(t, zi, ai)
	assert.Less(t, ai, mi)
}

func TestRenderNestedAndArrays(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Customer:
      type: object
      properties:
        name: {type: string}
    Order:
      type: object
      properties:
        customer: {$ref: '#/components/schemas/Customer'}
        tags:
          type: array
          items: {type: string}
`)
	data, err := examplegen.Render(m.Node("Order"))
	require.NoError(t, err)
	got := decode(t, data)

	customer, ok := got["customer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "example_string", customer["name"])

	tags, ok := got["tags"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"example_string"}, tags)
}

func TestRenderCircularReferenceMarker(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Node:
      type: object
      properties:
        value: {type: string}
        next: {$ref: '#/components/schemas/Node'}
`)
	data, err := examplegen.Render(m.Node("Node"))
	require.NoError(t, err)
	got := decode(t, data)
	assert.Equal(t, "# circular reference to Node", got["next"])
}

func TestRenderPolymorphicFieldUsesFirstVariant(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    CreditCard:
      type: object
      properties:
        cardNumber: {type: string}
    BankTransfer:
      type: object
      properties:
        iban: {type: string}
    Payment:
      type: object
      properties:
        paymentMethod:
          oneOf:
            - $ref: '#/components/schemas/CreditCard'
            - $ref: '#/components/schemas/BankTransfer'
`)
	data, err := examplegen.Render(m.Node("Payment"))
	require.NoError(t, err)
	got := decode(t, data)

	method, ok := got["paymentMethod"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, method, "cardNumber")
	assert.NotContains(t, method, "iban")
}

func TestRenderInheritedFieldsIncluded(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: T, version: "1"}
paths: {}
components:
  schemas:
    Vehicle:
      type: object
      properties:
        vehicleId: {type: string}
    Car:
      allOf:
        - $ref: '#/components/schemas/Vehicle'
        - type: object
          properties:
            engine: {type: string}
`)
	data, err := examplegen.Render(m.Node("Car"))
	require.NoError(t, err)
	got := decode(t, data)
	assert.Contains(t, got, "vehicleId")
	assert.Contains(t, got, "engine")
}
