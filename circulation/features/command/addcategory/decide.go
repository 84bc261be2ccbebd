package addcategory

import (
	"strings"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const failureReasonDuplicateName = "category already exists"

// Decide appends a Category with a fresh C### id. Names are unique ignoring case.
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	name := strings.TrimSpace(command.Name)

	if idx := ledger.CategoryIndexByName(name); idx >= 0 {
		return core.ErrorDecision(core.ValidationError, failureReasonDuplicateName, ledger.Categories[idx].ID)
	}

	l := ledger.Clone()
	category := core.Category{
		ID:          l.NextCategoryID(),
		Name:        name,
		Description: command.Description,
	}
	l.Categories = append(l.Categories, category)

	return core.SuccessDecision(l, category.ID, core.CategoriesCollection)
}
