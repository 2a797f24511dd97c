package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

const DefaultMinStock = 5

// ItemInput is the raw item payload. Absent fields stay nil so updates can
// tell "not sent" from "sent as zero". Numbers may arrive as JSON numbers or
// numeric strings.
type ItemInput struct {
	Name     *string      `json:"name"`
	SKU      *string      `json:"sku"`
	Quantity *json.Number `json:"quantity"`
	MinStock *json.Number `json:"minStock"`
}

// itemFields is the normalized record the struct rules run against.
type itemFields struct {
	Name     string `json:"name" validate:"min=2,max=100"`
	SKU      string `json:"sku" validate:"min=3,max=50,sku"`
	Quantity int    `json:"quantity" validate:"min=0,max=999999"`
	MinStock int    `json:"minStock" validate:"min=0,max=2147483647"`
}

var itemFieldOrder = []string{"name", "sku", "quantity", "minStock"}

// ValidateItem coerces in into a normalized item (name trimmed, SKU
// uppercased, minStock defaulted) or returns the first violation in field
// order name, sku, quantity, minStock. StoreID and timestamps are left for
// the caller.
func ValidateItem(in ItemInput) (models.Item, error) {
	var (
		f    itemFields
		errs = map[string]*FieldError{}
	)

	if in.Name == nil {
		errs["name"] = &FieldError{Field: "name", Message: "Name is required"}
	} else {
		f.Name = strings.TrimSpace(*in.Name)
	}

	if in.SKU == nil {
		errs["sku"] = &FieldError{Field: "sku", Message: "SKU is required"}
	} else {
		f.SKU = NormalizeSKU(*in.SKU)
	}

	if in.Quantity == nil {
		errs["quantity"] = &FieldError{Field: "quantity", Message: "Quantity is required"}
	} else if n, fe := wholeNumber("quantity", "Quantity", *in.Quantity); fe != nil {
		errs["quantity"] = fe
	} else {
		f.Quantity = n
	}

	f.MinStock = DefaultMinStock
	if in.MinStock != nil {
		if n, fe := wholeNumber("minStock", "Minimum stock", *in.MinStock); fe != nil {
			errs["minStock"] = fe
		} else {
			f.MinStock = n
		}
	}

	for _, fe := range fieldErrors(&f, itemMessage) {
		if _, seen := errs[fe.Field]; !seen {
			errs[fe.Field] = fe
		}
	}

	for _, name := range itemFieldOrder {
		if fe, ok := errs[name]; ok {
			return models.Item{}, fe
		}
	}

	return models.Item{
		Name:     f.Name,
		SKU:      f.SKU,
		Quantity: f.Quantity,
		MinStock: f.MinStock,
	}, nil
}

// NormalizeSKU trims and uppercases a SKU. It does not validate it.
func NormalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Merge returns a copy of in with every absent field taken from base. Used by
// partial updates before validation.
func (in ItemInput) Merge(base models.Item) ItemInput {
	out := in
	if out.Name == nil {
		name := base.Name
		out.Name = &name
	}
	if out.SKU == nil {
		sku := base.SKU
		out.SKU = &sku
	}
	if out.Quantity == nil {
		q := json.Number(strconv.Itoa(base.Quantity))
		out.Quantity = &q
	}
	if out.MinStock == nil {
		m := json.Number(strconv.Itoa(base.MinStock))
		out.MinStock = &m
	}
	return out
}

func wholeNumber(field, label string, n json.Number) (int, *FieldError) {
	v, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: field, Message: label + " must be a number"}
	}
	if v != math.Trunc(v) {
		return 0, &FieldError{Field: field, Message: "Must be a whole number"}
	}
	// the columns are 32-bit
	if v > math.MaxInt32 {
		return 0, &FieldError{Field: field, Message: label + " too large"}
	}
	if v < 0 {
		return 0, &FieldError{Field: field, Message: label + " cannot be negative"}
	}
	return int(v), nil
}

func itemMessage(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "name.min":
		return "Name must be at least 2 characters"
	case "name.max":
		return "Name cannot exceed 100 characters"
	case "sku.min":
		return "SKU must be at least 3 characters"
	case "sku.max":
		return "SKU cannot exceed 50 characters"
	case "sku.sku":
		return "SKU can only contain uppercase letters, numbers and underscores"
	case "quantity.min":
		return "Quantity cannot be negative"
	case "quantity.max":
		return "Quantity too large"
	case "minStock.min":
		return "Minimum stock cannot be negative"
	case "minStock.max":
		return "Minimum stock too large"
	default:
		return fe.Field() + " is invalid"
	}
}
