// Package apperror defines the structured business errors surfaced by the
// ledger: a stable code plus the entity kind, identifier, and offending field,
// so callers can render a specific message instead of a generic failure.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code enumerates the error taxonomy.
type Code string

const (
	CodeNotFound              Code = "not_found"
	CodeInvalidQuantity       Code = "invalid_quantity"
	CodeInvalidState          Code = "invalid_state"
	CodeInvalidUnit           Code = "invalid_unit"
	CodeInvalidThreshold      Code = "invalid_threshold"
	CodeDuplicateSKU          Code = "duplicate_sku"
	CodeInsufficientAvailable Code = "insufficient_available"
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeSameWarehouse         Code = "same_warehouse"
	CodeHasActiveStock        Code = "has_active_stock"
)

// Error is a business error with enough structure for an actionable response.
type Error struct {
	Code    Code   `json:"code"`
	Entity  string `json:"entity,omitempty"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Details returns the structured payload for the error response envelope.
func (e *Error) Details() map[string]interface{} {
	d := map[string]interface{}{"code": string(e.Code)}
	if e.Entity != "" {
		d["entity"] = e.Entity
	}
	if e.ID != "" {
		d["id"] = e.ID
	}
	if e.Field != "" {
		d["field"] = e.Field
	}
	return d
}

// Status maps the code to an HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeDuplicateSKU, CodeInvalidState, CodeInsufficientAvailable,
		CodeInsufficientBalance, CodeHasActiveStock:
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// As unwraps err into an *Error if it carries one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// NotFound reports a missing (or not visible to this organization) entity.
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Entity: entity, ID: id, Message: entity + " not found"}
}

// InvalidQuantity reports a zero or negative quantity.
func InvalidQuantity(entity, field string) *Error {
	return &Error{Code: CodeInvalidQuantity, Entity: entity, Field: field, Message: "Quantity must be greater than zero"}
}

// InvalidState reports an operation that is not valid in the entity's current state.
func InvalidState(entity, id, msg string) *Error {
	return &Error{Code: CodeInvalidState, Entity: entity, ID: id, Message: msg}
}

// MissingField reports a mandatory field left empty, as an invalid-state error.
func MissingField(entity, field, msg string) *Error {
	return &Error{Code: CodeInvalidState, Entity: entity, Field: field, Message: msg}
}

// InvalidUnit reports a unit outside the fixed vocabulary.
func InvalidUnit(unit string) *Error {
	return &Error{Code: CodeInvalidUnit, Entity: "item", Field: "unit", Message: "Unrecognized unit: " + unit}
}

// InvalidThreshold reports a negative minimum-stock threshold (or a bad
// packaging factor, via field).
func InvalidThreshold(field, msg string) *Error {
	return &Error{Code: CodeInvalidThreshold, Entity: "item", Field: field, Message: msg}
}

// DuplicateSKU reports a SKU already used within the organization.
func DuplicateSKU(sku string) *Error {
	return &Error{Code: CodeDuplicateSKU, Entity: "item", Field: "sku", ID: sku, Message: "SKU already exists: " + sku}
}

// InsufficientAvailable reports a request exceeding the available quantity
// (balance minus active reservations).
func InsufficientAvailable(itemID string) *Error {
	return &Error{Code: CodeInsufficientAvailable, Entity: "item", ID: itemID, Field: "quantity", Message: "Insufficient available stock"}
}

// InsufficientBalance reports a change that would drive a balance below zero.
func InsufficientBalance(itemID string) *Error {
	return &Error{Code: CodeInsufficientBalance, Entity: "item", ID: itemID, Field: "quantity", Message: "Insufficient stock balance"}
}

// SameWarehouse reports a transfer with identical origin and destination.
func SameWarehouse(warehouseID string) *Error {
	return &Error{Code: CodeSameWarehouse, Entity: "warehouse", ID: warehouseID, Message: "Origin and destination warehouses must differ"}
}

// HasActiveStock reports a warehouse deactivation blocked by nonzero balances.
func HasActiveStock(warehouseID string) *Error {
	return &Error{Code: CodeHasActiveStock, Entity: "warehouse", ID: warehouseID, Message: "Warehouse still holds stock; transfer it out first"}
}
