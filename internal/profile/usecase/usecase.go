package usecase

import (
	"context"
	"time"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/profile"
	"github.com/campusbites/order-service/internal/profile/dto"
	"github.com/campusbites/order-service/pkg/logger"
)

type profileUseCase struct {
	repo   profile.Repository
	logger logger.ZapLogger
}

func NewProfileUseCase(repo profile.Repository, log logger.ZapLogger) profile.UseCase {
	return &profileUseCase{repo: repo, logger: log}
}

func (uc *profileUseCase) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (uc *profileUseCase) EnsureProfile(ctx context.Context, input *dto.EnsureProfileInput) (*model.Profile, error) {
	now := time.Now()

	userType := input.UserType
	if userType == "" {
		userType = model.UserTypeStudent
	}

	p := &model.Profile{
		BaseModel: model.BaseModel{ID: input.UserID, CreatedAt: now, UpdatedAt: now},
		FullName:  input.FullName,
		Email:     input.Email,
		UserType:  userType,
	}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, input.UserID)
}

func (uc *profileUseCase) UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.Profile, error) {
	p, err := uc.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, profile.ErrProfileNotFound
	}

	p.FullName = input.FullName
	if input.Phone != "" {
		phone := input.Phone
		p.Phone = &phone
	} else {
		p.Phone = nil
	}
	if input.Block != "" {
		block := input.Block
		p.Block = &block
	} else {
		p.Block = nil
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
