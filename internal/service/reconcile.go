package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

// ReconcileNote tells the cashier how a held ticket line was adjusted
// to match the live catalog.
type ReconcileNote struct {
	Code int64  `json:"code"`
	Name string `json:"name"`
	Note string `json:"note"`
}

// reconcileTicket rebuilds a cart from a held ticket's lines against
// current catalog state: vanished or sold-out products are dropped,
// price drift silently adopts the current price, and quantities above
// on-hand are clamped down.
func reconcileTicket(ctx context.Context, catalog repository.CatalogStore, t *entity.Ticket) (*entity.Cart, []ReconcileNote, error) {
	cart := entity.NewCart()
	var notes []ReconcileNote

	for _, line := range t.Lines {
		p, err := catalog.FindByCode(ctx, line.Code)
		if errors.Is(err, entity.ErrProductNotFound) {
			notes = append(notes, ReconcileNote{line.Code, line.Name, "dropped: no longer in catalog"})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reconcile line %d: %w", line.Code, err)
		}

		if p.TracksStock && p.OnHand == 0 {
			notes = append(notes, ReconcileNote{line.Code, line.Name, "dropped: out of stock"})
			continue
		}

		qty := line.Quantity
		if p.TracksStock && qty > p.OnHand {
			qty = p.OnHand
			notes = append(notes, ReconcileNote{line.Code, line.Name,
				fmt.Sprintf("quantity reduced to %d (stock)", qty)})
		}
		if !p.Price.Equal(line.UnitPrice) {
			notes = append(notes, ReconcileNote{line.Code, line.Name,
				fmt.Sprintf("price updated from %s to %s", line.UnitPrice, p.Price)})
		}

		// The cart snapshots the live product, so the current price wins.
		if err := cart.AddProduct(*p, qty); err != nil {
			return nil, nil, fmt.Errorf("failed to rebuild cart line %d: %w", line.Code, err)
		}
	}
	return cart, notes, nil
}
