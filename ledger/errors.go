/*
errors.go - Error types for the ledger

ERROR CATEGORIES:
  1. Validation errors - caller input problems, reported before any new
     state is built. The input state is always left untouched.
  2. Catalog errors - re-exported from the catalog package so callers only
     need to import ledger.

NOT AN ERROR:
  Negative stock after a sale. Oversells are allowed and surfaced through
  Oversold (report.go).

USAGE:
  next, err := l.AdjustInventory(prev, editor, products, supplies)
  if errors.Is(err, ledger.ErrNoChanges) {
      // tell the operator nothing was edited
  }
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dongoyo/taproom/catalog"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrUnknownAgency = catalog.ErrUnknownAgency
	ErrUnknownID     = catalog.ErrUnknownID

	// ErrInvalidQuantity is returned when a sale item quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrMissingEditor is returned when an adjustment has no editor name.
	ErrMissingEditor = errors.New("editor name is required")

	// ErrNoChanges is returned when an adjustment equals the current inventory.
	ErrNoChanges = errors.New("no inventory changes")

	// ErrIncompleteInventory is returned when an adjustment omits catalog ids.
	ErrIncompleteInventory = errors.New("incomplete inventory")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidQuantityError names the offending sale line.
type InvalidQuantityError struct {
	ProductID catalog.ProductID
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for %s: must be positive", e.Quantity, e.ProductID)
}

func (e *InvalidQuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// IncompleteInventoryError lists the catalog ids missing from an inventory.
type IncompleteInventoryError struct {
	Products []catalog.ProductID
	Supplies []catalog.SupplyID
}

func (e *IncompleteInventoryError) Error() string {
	missing := make([]string, 0, len(e.Products)+len(e.Supplies))
	for _, id := range e.Products {
		missing = append(missing, string(id))
	}
	for _, id := range e.Supplies {
		missing = append(missing, string(id))
	}
	return fmt.Sprintf("incomplete inventory: missing %s", strings.Join(missing, ", "))
}

func (e *IncompleteInventoryError) Unwrap() error {
	return ErrIncompleteInventory
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError returns true if err is caused by caller input and the
// caller can retry with corrected input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownAgency) ||
		errors.Is(err, ErrUnknownID) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrMissingEditor) ||
		errors.Is(err, ErrNoChanges) ||
		errors.Is(err, ErrIncompleteInventory)
}
