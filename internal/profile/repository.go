package profile

import (
	"context"

	"github.com/campusbites/order-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
	Update(ctx context.Context, p *model.Profile) error
}
