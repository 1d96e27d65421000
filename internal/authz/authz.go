// Package authz holds the single capability check every handler consults
// before invoking a service operation.
package authz

import "beecommerce/internal/domain"

// Identity is the authenticated caller. The zero value is anonymous.
type Identity struct {
	UserID string
	Role   string
}

func (id Identity) Authenticated() bool { return id.UserID != "" }
func (id Identity) Admin() bool         { return id.Authenticated() && id.Role == domain.RoleAdmin }

type Action string

const (
	ReadCatalog       Action = "catalog.read"
	WriteCatalog      Action = "catalog.write"
	ManageStock       Action = "stock.manage"
	UseCart           Action = "cart.use"
	Checkout          Action = "checkout"
	ReadOrder         Action = "order.read"
	ListAllOrders     Action = "order.list_all"
	UpdateOrderStatus Action = "order.status"
	CancelOrder       Action = "order.cancel"
	ReadProfile       Action = "profile.read"
)

// Resource describes what is being acted on; OwnerID is empty for shared
// resources such as the catalog.
type Resource struct {
	Kind    string
	OwnerID string
}

func Can(id Identity, action Action, res Resource) bool {
	switch action {
	case ReadCatalog:
		return true
	case WriteCatalog, ManageStock, ListAllOrders, UpdateOrderStatus:
		return id.Admin()
	case UseCart, Checkout, ReadProfile:
		return id.Authenticated()
	case ReadOrder:
		return id.Admin() || (id.Authenticated() && id.UserID == res.OwnerID)
	case CancelOrder:
		return id.Authenticated() && (id.UserID == res.OwnerID || id.Admin())
	}
	return false
}
