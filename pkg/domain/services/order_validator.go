package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/supplysim/pkg/domain/entities"
	"github.com/vsinha/supplysim/pkg/domain/repositories"
)

// OrderValidator enforces the data contract at the boundary where orders
// enter the ledger: struct rules first, then catalog references.
type OrderValidator struct {
	catalog  repositories.Catalog
	validate *validator.Validate
}

// NewOrderValidator creates a validator bound to a catalog
func NewOrderValidator(catalog repositories.Catalog) *OrderValidator {
	return &OrderValidator{
		catalog:  catalog,
		validate: validator.New(),
	}
}

// ValidateOrder rejects non-positive quantities, empty orders and repeated
// products with ErrInvalidOrder, and references to ids missing from the
// catalog with the matching ErrUnknown sentinel.
func (v *OrderValidator) ValidateOrder(order *entities.CustomerOrder) error {
	if err := v.validate.Struct(order); err != nil {
		return fieldErrors(entities.ErrInvalidOrder, order.ID, err)
	}

	seen := make(map[entities.ProductID]bool, len(order.Lines))
	for i, line := range order.Lines {
		if seen[line.Product] {
			return &entities.ValidationError{
				Err:     entities.ErrInvalidOrder,
				Subject: order.ID,
				Details: map[string]string{fmt.Sprintf("Lines[%d].Product", i): "is repeated within the order"},
			}
		}
		seen[line.Product] = true
	}

	if _, err := v.catalog.GetCustomer(order.Customer); err != nil {
		return fmt.Errorf("order %s: %w", order.ID, err)
	}
	if _, err := v.catalog.GetZone(order.Zone); err != nil {
		return fmt.Errorf("order %s: %w", order.ID, err)
	}
	for _, line := range order.Lines {
		if _, err := v.catalog.GetProduct(line.Product); err != nil {
			return fmt.Errorf("order %s: %w", order.ID, err)
		}
	}
	return nil
}

// ValidateOrders validates a day's orders and stops at the first violation
func (v *OrderValidator) ValidateOrders(orders []*entities.CustomerOrder) error {
	for _, o := range orders {
		if err := v.ValidateOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCatalog checks master data invariants: product stock parameters,
// customer wait probabilities, and that zones and fleet are not empty.
func (v *OrderValidator) ValidateCatalog() error {
	var errs []error

	products := v.catalog.GetAllProducts()
	if len(products) == 0 {
		errs = append(errs, fmt.Errorf("%w: no products", entities.ErrInvalidCatalog))
	}
	for _, p := range products {
		if err := v.validate.Struct(p); err != nil {
			errs = append(errs, fieldErrors(entities.ErrInvalidCatalog, string(p.ID), err))
		}
	}

	customers := v.catalog.GetAllCustomers()
	if len(customers) == 0 {
		errs = append(errs, fmt.Errorf("%w: no customers", entities.ErrInvalidCatalog))
	}
	for _, c := range customers {
		if err := v.validate.Struct(c); err != nil {
			errs = append(errs, fieldErrors(entities.ErrInvalidCatalog, string(c.ID), err))
		}
	}

	if len(v.catalog.GetAllZones()) == 0 {
		errs = append(errs, fmt.Errorf("%w: no zones", entities.ErrInvalidCatalog))
	}
	if len(v.catalog.GetFleet()) == 0 {
		errs = append(errs, fmt.Errorf("%w: no vehicles", entities.ErrInvalidCatalog))
	}

	return errors.Join(errs...)
}

func fieldErrors(sentinel error, subject string, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w %s: %v", sentinel, subject, err)
	}

	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[fieldPath(e)] = formatValidationError(e)
	}
	return &entities.ValidationError{Err: sentinel, Subject: subject, Details: details}
}

// fieldPath drops the struct name from the namespace, keeping slice indexes
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	for i, c := range ns {
		if c == '.' {
			return ns[i+1:]
		}
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + e.Param() + " entries"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "gtefield":
		return "cannot be below " + e.Param()
	default:
		return "invalid value"
	}
}
