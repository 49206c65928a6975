package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/cafe"
	"github.com/campusbites/order-service/internal/cafe/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/logger"
)

type cafeUseCase struct {
	repo   cafe.Repository
	logger logger.ZapLogger
}

func NewCafeUseCase(repo cafe.Repository, log logger.ZapLogger) cafe.UseCase {
	return &cafeUseCase{repo: repo, logger: log}
}

func (uc *cafeUseCase) CreateCafe(ctx context.Context, input *dto.CreateCafeInput) (*model.Cafe, error) {
	now := time.Now()

	slug := input.Slug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(input.Name), " ", "-"))
	}

	description := &input.Description
	if input.Description == "" {
		description = nil
	}
	location := &input.Location
	if input.Location == "" {
		location = nil
	}
	imageURL := &input.ImageURL
	if input.ImageURL == "" {
		imageURL = nil
	}
	whatsapp := &input.WhatsappNumber
	if input.WhatsappNumber == "" {
		whatsapp = nil
	}

	c := &model.Cafe{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:         input.OwnerID,
		Name:            input.Name,
		Slug:            slug,
		Description:     description,
		Location:        location,
		ImageURL:        imageURL,
		AcceptingOrders: true,
		WhatsappNumber:  whatsapp,
		WhatsappEnabled: whatsapp != nil,
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cafeUseCase) GetCafe(ctx context.Context, id string) (*model.Cafe, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *cafeUseCase) ListCafes(ctx context.Context, filters *dto.CafeFilters) ([]model.Cafe, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *cafeUseCase) UpdateCafe(ctx context.Context, input *dto.UpdateCafeInput) (*model.Cafe, error) {
	c, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cafe.ErrCafeNotFound
	}

	c.Name = input.Name
	c.WhatsappEnabled = input.WhatsappEnabled
	if input.Description != "" {
		desc := input.Description
		c.Description = &desc
	} else {
		c.Description = nil
	}
	if input.Location != "" {
		loc := input.Location
		c.Location = &loc
	} else {
		c.Location = nil
	}
	if input.ImageURL != "" {
		img := input.ImageURL
		c.ImageURL = &img
	} else {
		c.ImageURL = nil
	}
	if input.WhatsappNumber != "" {
		wa := input.WhatsappNumber
		c.WhatsappNumber = &wa
	} else {
		c.WhatsappNumber = nil
		c.WhatsappEnabled = false
	}

	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cafeUseCase) SetAcceptingOrders(ctx context.Context, cafeID, userID string, accepting bool) error {
	ok, err := uc.CanManage(ctx, cafeID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return cafe.ErrNotOwner
	}

	uc.logger.Info("cafe accepting-orders toggled",
		zap.String("cafe_id", cafeID),
		zap.Bool("accepting", accepting),
	)
	return uc.repo.SetAcceptingOrders(ctx, cafeID, accepting)
}

func (uc *cafeUseCase) CanManage(ctx context.Context, cafeID, userID string) (bool, error) {
	return uc.repo.HasStaff(ctx, cafeID, userID)
}

func (uc *cafeUseCase) AddStaff(ctx context.Context, cafeID, ownerID, staffUserID string) (*model.CafeStaff, error) {
	c, err := uc.repo.FindByID(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cafe.ErrCafeNotFound
	}
	// Only the owner may change the roster; staff cannot add staff.
	if c.OwnerID != ownerID {
		return nil, cafe.ErrNotOwner
	}

	staff := &model.CafeStaff{
		ID:        uuid.New().String(),
		CafeID:    cafeID,
		UserID:    staffUserID,
		Role:      "staff",
		CreatedAt: time.Now(),
	}
	if err := uc.repo.AddStaff(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (uc *cafeUseCase) RemoveStaff(ctx context.Context, cafeID, ownerID, staffUserID string) error {
	c, err := uc.repo.FindByID(ctx, cafeID)
	if err != nil {
		return err
	}
	if c == nil {
		return cafe.ErrCafeNotFound
	}
	if c.OwnerID != ownerID {
		return cafe.ErrNotOwner
	}
	return uc.repo.RemoveStaff(ctx, cafeID, staffUserID)
}

func (uc *cafeUseCase) ListStaff(ctx context.Context, cafeID string) ([]model.CafeStaff, error) {
	return uc.repo.ListStaff(ctx, cafeID)
}
