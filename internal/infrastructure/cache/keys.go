package cache

import (
	"strings"

	"github.com/google/uuid"
)

// KeyKind names one kind of customer aggregate view.
type KeyKind string

const (
	KindCustomerDetail   KeyKind = "customer_detail"
	KindBillList         KeyKind = "bill_list"
	KindPaymentList      KeyKind = "payment_list"
	KindMembershipList   KeyKind = "membership_list"
	KindPtAllocationList KeyKind = "pt_allocation_list"
)

// Key identifies one cached view of a customer. Variant separates list
// pages and filters that share freshness state.
type Key struct {
	Kind       KeyKind
	CustomerID uuid.UUID
	Variant    string
}

// WithVariant returns a copy of k for the given list page or filter.
func (k Key) WithVariant(variant string) Key {
	k.Variant = variant
	return k
}

// KeySpace builds the cache keys for customer views. One KeySpace is created
// per application and handed to the Synchronizer.
type KeySpace struct {
	prefix string
	kinds  []KeyKind
}

// NewKeySpace creates a key space whose store keys start with prefix.
func NewKeySpace(prefix string) *KeySpace {
	return &KeySpace{
		prefix: prefix,
		kinds: []KeyKind{
			KindCustomerDetail,
			KindBillList,
			KindPaymentList,
			KindMembershipList,
			KindPtAllocationList,
		},
	}
}

// CustomerDetail is the key of the aggregated customer detail view.
func (ks *KeySpace) CustomerDetail(customerID uuid.UUID) Key {
	return Key{Kind: KindCustomerDetail, CustomerID: customerID}
}

// Of returns the base key of the given kind for a customer.
func (ks *KeySpace) Of(kind KeyKind, customerID uuid.UUID) Key {
	return Key{Kind: kind, CustomerID: customerID}
}

// Dependents returns every view key that a mutation on the customer touches.
func (ks *KeySpace) Dependents(customerID uuid.UUID) []Key {
	keys := make([]Key, 0, len(ks.kinds))
	for _, kind := range ks.kinds {
		keys = append(keys, Key{Kind: kind, CustomerID: customerID})
	}
	return keys
}

// StateKey identifies the freshness state shared by all variants of k.
func (ks *KeySpace) StateKey(k Key) string {
	return ks.prefix + string(k.Kind) + ":" + k.CustomerID.String()
}

// StoreKey is the key the view value is stored under.
func (ks *KeySpace) StoreKey(k Key) string {
	if k.Variant == "" {
		return ks.StateKey(k)
	}
	return ks.StateKey(k) + ":" + k.Variant
}

// Parse reverses StateKey. It reports false for keys outside this space.
func (ks *KeySpace) Parse(stateKey string) (Key, bool) {
	rest, ok := strings.CutPrefix(stateKey, ks.prefix)
	if !ok {
		return Key{}, false
	}
	kind, id, ok := strings.Cut(rest, ":")
	if !ok {
		return Key{}, false
	}
	customerID, err := uuid.Parse(id)
	if err != nil {
		return Key{}, false
	}
	for _, k := range ks.kinds {
		if string(k) == kind {
			return Key{Kind: k, CustomerID: customerID}, true
		}
	}
	return Key{}, false
}
