package scope

// EntityKind identifies a persistable entity class. The set is closed:
// repositories are only constructed for kinds listed here, and whether a kind
// is tenant-owned is decided in exactly one place.
type EntityKind string

const (
	KindUser                 EntityKind = "user"
	KindBranch               EntityKind = "branch"
	KindCustomer             EntityKind = "customer"
	KindInventoryItem        EntityKind = "inventory_item"
	KindVehicleStockItem     EntityKind = "vehicle_stock_item"
	KindInventoryTransaction EntityKind = "inventory_transaction"
	KindOrder                EntityKind = "order"

	// KindOrderLine is reached through its parent order and carries no
	// tenant column of its own.
	KindOrderLine EntityKind = "order_line"
)

// Valid reports whether the kind is part of the closed set
func (k EntityKind) Valid() bool {
	switch k {
	case KindUser, KindBranch, KindCustomer, KindInventoryItem,
		KindVehicleStockItem, KindInventoryTransaction, KindOrder, KindOrderLine:
		return true
	}
	return false
}

// TenantOwned reports whether rows of this kind carry a tenant_id column and
// therefore get the unconditional tenant filter and creation stamping
func (k EntityKind) TenantOwned() bool {
	switch k {
	case KindUser, KindBranch, KindCustomer, KindInventoryItem,
		KindVehicleStockItem, KindInventoryTransaction, KindOrder:
		return true
	case KindOrderLine:
		return false
	}
	return false
}
