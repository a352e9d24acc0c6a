package agent

import (
	"github.com/vansales/backend/internal/domain/agent"
	"github.com/vansales/backend/internal/domain/shared"
)

// Capability names. The registry is the single source of truth for which of
// these exist and who may call them; handlers are looked up by these names.
const (
	CapListCustomers   = "list_customers"
	CapGetInventory    = "get_inventory"
	CapGetVehicleStock = "get_vehicle_stock"
	CapListOrders      = "list_orders"
	CapCreateOrder     = "create_order"
	CapAdjustInventory = "adjust_inventory"
	CapPullStock       = "pull_stock"
)

var allRoles = []shared.Role{shared.RoleAdmin, shared.RoleManager, shared.RoleDriver, shared.RoleAgent}

// DefaultCapabilities returns the static capability definitions exposed to
// agents. Parameter schemas are JSON Schema objects; unknown argument keys are
// rejected so a typo cannot silently change behavior.
func DefaultCapabilities() []agent.Capability {
	return []agent.Capability{
		{
			Name:        CapListCustomers,
			Description: "List the tenant's customers, optionally filtered by status or a name/code search",
			Parameters: objectSchema(map[string]any{
				"search":   map[string]any{"type": "string"},
				"status":   map[string]any{"type": "string", "enum": []any{"active", "inactive"}},
				"page":     map[string]any{"type": "integer", "minimum": 1},
				"pageSize": map[string]any{"type": "integer", "minimum": 1, "maximum": 200},
			}),
			AllowedRoles: allRoles,
		},
		{
			Name:        CapGetInventory,
			Description: "Read branch inventory levels, optionally for one branch or one SKU",
			Parameters: objectSchema(map[string]any{
				"branchId": uuidSchema(),
				"sku":      map[string]any{"type": "string"},
			}),
			AllowedRoles: allRoles,
		},
		{
			Name:        CapGetVehicleStock,
			Description: "Read the stock currently loaded on a delivery vehicle",
			Parameters: objectSchema(map[string]any{
				"vehicleId": uuidSchema(),
			}, "vehicleId"),
			AllowedRoles: allRoles,
		},
		{
			Name:        CapListOrders,
			Description: "List the tenant's orders, optionally filtered by status or customer",
			Parameters: objectSchema(map[string]any{
				"status":     map[string]any{"type": "string", "enum": []any{"draft", "confirmed", "delivered", "cancelled"}},
				"customerId": uuidSchema(),
				"page":       map[string]any{"type": "integer", "minimum": 1},
				"pageSize":   map[string]any{"type": "integer", "minimum": 1, "maximum": 200},
			}),
			AllowedRoles: allRoles,
		},
		{
			Name:        CapCreateOrder,
			Description: "Create and confirm a sales order for a customer",
			Parameters: objectSchema(map[string]any{
				"customerId": uuidSchema(),
				"notes":      map[string]any{"type": "string"},
				"lines": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": objectSchema(map[string]any{
						"sku":       map[string]any{"type": "string", "minLength": 1},
						"name":      map[string]any{"type": "string"},
						"quantity":  map[string]any{"type": "number", "exclusiveMinimum": 0},
						"unitPrice": map[string]any{"type": "number", "minimum": 0},
					}, "sku", "quantity", "unitPrice"),
				},
			}, "customerId", "lines"),
			AllowedRoles: allRoles,
		},
		{
			Name:        CapAdjustInventory,
			Description: "Apply a signed quantity correction to a branch inventory item",
			Parameters: objectSchema(map[string]any{
				"branchId": uuidSchema(),
				"sku":      map[string]any{"type": "string", "minLength": 1},
				"delta":    map[string]any{"type": "number"},
				"reason":   map[string]any{"type": "string"},
			}, "sku", "delta"),
			AllowedRoles: []shared.Role{shared.RoleAdmin, shared.RoleManager},
		},
		{
			Name:        CapPullStock,
			Description: "Move stock from a branch onto a delivery vehicle",
			Parameters: objectSchema(map[string]any{
				"vehicleId": uuidSchema(),
				"branchId":  uuidSchema(),
				"sku":       map[string]any{"type": "string", "minLength": 1},
				"quantity":  map[string]any{"type": "number", "exclusiveMinimum": 0},
			}, "vehicleId", "sku", "quantity"),
			AllowedRoles: []shared.Role{shared.RoleAdmin, shared.RoleManager, shared.RoleDriver},
		},
	}
}

// ReadOnlyCapabilities is the curated allow-list of capabilities that execute
// immediately without confirmation. Mutating capabilities must never appear
// here.
func ReadOnlyCapabilities() []string {
	return []string{CapListCustomers, CapGetInventory, CapGetVehicleStock, CapListOrders}
}

// BuildRegistry constructs the default capability registry.
func BuildRegistry() (*agent.Registry, error) {
	return agent.NewRegistry(DefaultCapabilities(), ReadOnlyCapabilities())
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		req := make([]any, 0, len(required))
		for _, r := range required {
			req = append(req, r)
		}
		s["required"] = req
	}
	return s
}

func uuidSchema() map[string]any {
	return map[string]any{"type": "string", "format": "uuid"}
}
