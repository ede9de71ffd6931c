package handlers

import (
	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

// discountUpdateInput is the pricing part of a product update request.
// OnSale=false clears any discount; a discountedPrice of 0 does the same.
type discountUpdateInput struct {
	OnSale          *bool
	DiscountedPrice *float64
}

type discountUpdateResult struct {
	DiscountedPrice *float64
	Clear           bool
}

// resolveDiscountUpdate turns the onSale flag and discountedPrice of a request
// into a patch. The catalog service checks the merged price pair.
func resolveDiscountUpdate(existing models.Product, input discountUpdateInput) (discountUpdateResult, error) {
	var result discountUpdateResult

	if input.OnSale != nil && !*input.OnSale {
		result.Clear = true
	}

	if input.DiscountedPrice != nil {
		if *input.DiscountedPrice == 0 {
			result.Clear = true
		} else {
			discounted := *input.DiscountedPrice
			result.DiscountedPrice = &discounted
			result.Clear = false
		}
	}

	if input.OnSale != nil && *input.OnSale {
		kept := !result.Clear && existing.DiscountedPrice != nil
		if result.DiscountedPrice == nil && !kept {
			return discountUpdateResult{}, apperr.Validation("discountedPrice", "required when onSale is true")
		}
	}
	return result, nil
}
