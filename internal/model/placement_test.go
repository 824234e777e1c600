package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openapi2java/openapi2java/internal/model"
)

const storeDoc = `
openapi: 3.0.0
info: {title: Store, version: "1"}
paths:
  /orders:
    post:
      operationId: createOrder
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Order'}
      responses:
        '201':
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Order'}
  /customers/{customerId}:
    get:
      operationId: getCustomer
      parameters:
        - name: customerId
          in: path
          required: true
          schema: {type: string}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Customer'}
components:
  schemas:
    Customer:
      type: object
      properties:
        name: {type: string}
    LineItem:
      type: object
      properties:
        sku: {type: string}
    Order:
      type: object
      properties:
        customer: {$ref: '#/components/schemas/Customer'}
        items:
          type: array
          items: {$ref: '#/components/schemas/LineItem'}
    Orphan:
      type: object
      properties:
        note: {type: string}
`

func TestGlobalPlacementIsDeduplicating(t *testing.T) {
	m := build(t, storeDoc)
	placements := model.GlobalPlacements(m)

	perNode := map[*model.SchemaNode]int{}
	for _, p := range placements {
		assert.Equal(t, model.GlobalTree, p.Tree)
		assert.Equal(t, model.AllSchemasDir, p.Segments[0])
		perNode[p.Node]++
	}
	for node, count := range perNode {
		assert.Equal(t, 1, count, "node %s must have exactly one global placement", node.Name)
	}
	assert.Len(t, perNode, len(m.Nodes()))
}

func TestGlobalPlacementIsIdempotent(t *testing.T) {
	m := build(t, storeDoc)
	first := model.GlobalPlacements(m)
	second := model.GlobalPlacements(m)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i].Node, second[i].Node)
		assert.Equal(t, first[i].Segments, second[i].Segments)
	}
}

func TestEndpointPlacementDuplicatesSharedSchemas(t *testing.T) {
	m := build(t, storeDoc)
	placements := model.EndpointPlacements(m)

	// Customer is the root of GET /customers/{customerId} and a dependency
	// of both POST /orders roles.
	customer := m.Node("Customer")
	var dirs []string
	for _, p := range placements {
		if p.Node == customer {
			dirs = append(dirs, strings.Join(p.Segments, "/"))
		}
	}
	assert.GreaterOrEqual(t, len(dirs), 3, "shared schema is placed once per endpoint/role, got %v", dirs)
	assert.Contains(t, dirs, "GET_customers_customerId/response")
	assert.Contains(t, dirs, "POST_orders/body/related")
	assert.Contains(t, dirs, "POST_orders/response/related")
}

func TestEndpointPlacementRootAndRelated(t *testing.T) {
	m := build(t, storeDoc)
	placements := model.EndpointPlacements(m)

	var bodyRoot, bodyRelated []string
	for _, p := range placements {
		if p.Binding == nil || p.Binding.Dir != "POST_orders" || p.Binding.Role != model.RoleBody {
			continue
		}
		if p.Node == p.Binding.Schema {
			bodyRoot = append(bodyRoot, strings.Join(p.Segments, "/"))
			continue
		}
		bodyRelated = append(bodyRelated, p.Node.Name)
	}
	assert.Equal(t, []string{"POST_orders/body"}, bodyRoot)
	assert.ElementsMatch(t, []string{"Customer", "LineItem"}, bodyRelated)
}

func TestUnboundSchemasLandInNoEndpointBucket(t *testing.T) {
	m := build(t, storeDoc)
	placements := model.EndpointPlacements(m)

	orphan := m.Node("Orphan")
	var found []string
	for _, p := range placements {
		if p.Node == orphan {
			found = append(found, strings.Join(p.Segments, "/"))
		}
	}
	assert.Equal(t, []string{model.NoEndpointDir}, found)
}

func TestGlobalPlacementGroupsInheritanceFamilies(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: Fleet, version: "1"}
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
    Truck:
      allOf:
        - $ref: '#/components/schemas/Vehicle'
        - type: object
          properties:
            payload: {type: integer}
`)
	segments := map[string]string{}
	for _, p := range model.GlobalPlacements(m) {
		segments[p.Node.Name] = strings.Join(p.Segments, "/")
	}
	assert.Equal(t, model.AllSchemasDir, segments["Vehicle"], "family roots sit at the top level")
	assert.Equal(t, model.AllSchemasDir+"/Vehicle", segments["Car"])
	assert.Equal(t, model.AllSchemasDir+"/Vehicle", segments["Truck"])
}

func TestRelatedDependenciesGroupByFamily(t *testing.T) {
	m := build(t, `
openapi: 3.0.0
info: {title: Claims, version: "1"}
paths:
  /claim:
    post:
      operationId: createClaim
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/ClaimDetail'}
      responses:
        '201':
          description: created
components:
  schemas:
    ClaimDetail:
      type: object
      properties:
        damages: {$ref: '#/components/schemas/ClaimDamagesSpecific'}
    ClaimDamagesSpecific:
      oneOf:
        - $ref: '#/components/schemas/ApplianceDamagesInfo'
        - $ref: '#/components/schemas/WaterDamagesInfo'
    ApplianceDamagesInfo:
      type: object
      properties:
        appliance: {type: string}
    WaterDamagesInfo:
      type: object
      properties:
        severity: {type: string}
`)
	segments := map[string]string{}
	for _, p := range model.EndpointPlacements(m) {
		if p.Binding != nil && p.Binding.Role == model.RoleBody && p.Node != p.Binding.Schema {
			segments[p.Node.Name] = strings.Join(p.Segments, "/")
		}
	}
	family := "POST_claim/body/related/claimDamagesSpecific"
	assert.Equal(t, family, segments["ClaimDamagesSpecific"])
	assert.Equal(t, family, segments["ApplianceDamagesInfo"])
	assert.Equal(t, family, segments["WaterDamagesInfo"])
}
