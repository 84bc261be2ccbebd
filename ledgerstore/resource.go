package ledgerstore

import (
	"errors"
	"fmt"
)

// ErrUnknownResource is returned when a resource name is not one of the ledger collections.
var ErrUnknownResource = errors.New("unknown resource")

// Resource names one of the flat collections that make up the ledger.
type Resource string

// The ledger collections.
const (
	Books      Resource = "books"
	Categories Resource = "categories"
	Members    Resource = "members"
	Issues     Resource = "issues"
	Users      Resource = "users"
	Requests   Resource = "requests"
)

// AllResources returns every ledger collection in a stable order.
func AllResources() []Resource {
	return []Resource{Books, Categories, Members, Issues, Users, Requests}
}

// ParseResource converts a name into a Resource, rejecting names that are not ledger collections.
func ParseResource(name string) (Resource, error) {
	for _, r := range AllResources() {
		if string(r) == name {
			return r, nil
		}
	}

	return "", errors.Join(ErrUnknownResource, fmt.Errorf("resource %q", name))
}

func (r Resource) String() string {
	return string(r)
}
