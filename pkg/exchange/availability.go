package exchange

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"Tukarin-Backend/pkg/product"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	// AvailabilityChecker decides whether two products are eligible to be
	// exchanged. The price rule is exact equality on the stored price; the
	// interface isolates it so a tier or range rule can replace it without
	// touching the state machine.
	AvailabilityChecker interface {
		CheckPair(ctx context.Context, productID, toProductID string) (*entities.Product, *entities.Product, error)
	}

	availabilityChecker struct {
		productRepository  product.ProductRepository
		exchangeRepository ExchangeRepository
	}
)

func NewAvailabilityChecker(productRepository product.ProductRepository, exchangeRepository ExchangeRepository) AvailabilityChecker {
	return &availabilityChecker{
		productRepository:  productRepository,
		exchangeRepository: exchangeRepository,
	}
}

// CheckPair runs the eligibility rules in order: both products exist, prices
// match exactly, and neither was consumed by a completed exchange. It never
// mutates state.
func (c *availabilityChecker) CheckPair(ctx context.Context, productID, toProductID string) (*entities.Product, *entities.Product, error) {
	first, err := c.productRepository.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrProductNotFound
		}
		return nil, nil, err
	}

	second, err := c.productRepository.GetProductByID(ctx, toProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrProductNotFound
		}
		return nil, nil, err
	}

	if first.Price != second.Price {
		return nil, nil, domain.ErrPriceMismatch
	}

	for _, id := range []string{productID, toProductID} {
		count, err := c.exchangeRepository.CountCompletedForProduct(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if count > 0 {
			return nil, nil, domain.ErrProductAlreadyExchanged
		}
	}

	return first, second, nil
}
