package inventory

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/arenex-logistics/arenex-backend/internal/modules/order"
)

// Service computes free stock for the recommendation engine.
type Service interface {
	// Available computes the free stock for a product at a site:
	// stock minus the tonnage reserved by open orders requesting that
	// product. Floors at zero, rounded to one decimal for display.
	//
	// Every open order reserves its full requested quantity against every
	// site; reservations are not allocated per site. excludeOrderID
	// removes the order being quoted from its own reservation; pass
	// uuid.Nil to count every open order.
	Available(ctx context.Context, site Site, productID, excludeOrderID uuid.UUID) (*Availability, error)
}

type service struct {
	repo      Repository
	orderRepo order.Repository
}

// NewService creates a new inventory service.
func NewService(repo Repository, orderRepo order.Repository) Service {
	return &service{repo: repo, orderRepo: orderRepo}
}

func (s *service) Available(ctx context.Context, site Site, productID, excludeOrderID uuid.UUID) (*Availability, error) {
	if !site.Valid() {
		return nil, fmt.Errorf("unknown site %q", site)
	}

	stock, err := s.repo.GetBalance(ctx, site, productID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}

	open, err := s.orderRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	var reserved float64
	for _, o := range open {
		if o.ID == excludeOrderID {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				reserved += item.QuantityTons
			}
		}
	}

	available := stock - reserved
	if available < 0 {
		available = 0
	}

	return &Availability{
		SiteID:        site,
		ProductID:     productID,
		StockTons:     stock,
		ReservedTons:  reserved,
		AvailableTons: round1(available),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
