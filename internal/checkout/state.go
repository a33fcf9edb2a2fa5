package checkout

import (
	"checkout-service/internal/models"
	"checkout-service/internal/pricing"
)

// State is an immutable view of a checkout.
// Values handed out by the store never share mutable data with it.
type State struct {
	Status   string
	Products []models.Product
	Order    models.Quantities
	Err      error
}

func initialState() State {
	return State{
		Status: models.StatusLoading,
		Order:  models.Quantities{},
	}
}

// Loading reports whether the catalog is still being fetched
func (s State) Loading() bool {
	return s.Status == models.StatusLoading
}

// Ready reports whether the catalog has been loaded
func (s State) Ready() bool {
	return s.Status == models.StatusReady
}

// Product looks up a catalog entry
func (s State) Product(id int64) (models.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Quantity returns the ordered quantity for a product
func (s State) Quantity(id int64) int {
	return s.Order.Of(id)
}

// Totals derives the order totals from the current quantities
func (s State) Totals() pricing.Totals {
	return pricing.Summarize(s.Products, s.Order)
}

func (s State) clone() State {
	out := s
	out.Products = make([]models.Product, len(s.Products))
	copy(out.Products, s.Products)
	out.Order = s.Order.Clone()
	return out
}

// Action is a state transition request. The set of actions is closed.
type Action interface {
	isAction()
}

// ProductsLoaded delivers the fetched catalog
type ProductsLoaded struct {
	Products []models.Product
}

// LoadFailed reports a rejected catalog fetch
type LoadFailed struct {
	Err error
}

// SetQuantity sets the ordered quantity of one product
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// Adjust changes the ordered quantity of one product by Delta.
// It is resolved into a SetQuantity against the state it is applied to.
type Adjust struct {
	ProductID int64
	Delta     int
}

func (ProductsLoaded) isAction() {}
func (LoadFailed) isAction()     {}
func (SetQuantity) isAction()    {}
func (Adjust) isAction()         {}

// Rejection reasons for actions that leave the state untouched
const (
	RejectNotLoading     = "not_loading"
	RejectNotReady       = "not_ready"
	RejectUnknownProduct = "unknown_product"
	RejectOutOfRange     = "out_of_range"
	RejectUnchanged      = "unchanged"
)

func resolve(state State, action Action) Action {
	if a, ok := action.(Adjust); ok {
		return SetQuantity{ProductID: a.ProductID, Quantity: state.Quantity(a.ProductID) + a.Delta}
	}
	return action
}

// reduce applies action to state. It returns the next state, or the
// reason the action was rejected; a rejected action never alters state.
func reduce(state State, action Action) (State, string) {
	switch a := action.(type) {
	case ProductsLoaded:
		if !state.Loading() {
			return state, RejectNotLoading
		}
		next := state
		next.Status = models.StatusReady
		next.Products = make([]models.Product, len(a.Products))
		copy(next.Products, a.Products)
		return next, ""

	case LoadFailed:
		if !state.Loading() {
			return state, RejectNotLoading
		}
		next := state
		next.Status = models.StatusFailed
		next.Err = a.Err
		return next, ""

	case SetQuantity:
		if !state.Ready() {
			return state, RejectNotReady
		}
		product, ok := state.Product(a.ProductID)
		if !ok {
			return state, RejectUnknownProduct
		}
		if a.Quantity < 0 || a.Quantity > product.AvailableCount {
			return state, RejectOutOfRange
		}
		if state.Quantity(a.ProductID) == a.Quantity {
			return state, RejectUnchanged
		}
		next := state
		next.Order = state.Order.Clone()
		if a.Quantity == 0 {
			delete(next.Order, a.ProductID)
		} else {
			next.Order[a.ProductID] = a.Quantity
		}
		return next, ""
	}

	return state, RejectUnchanged
}
