// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/repository"
)

var _ ProfileUseCase = (*profileUC)(nil)

// ProfileUseCase reads and updates the customer's delivery identity.
type ProfileUseCase interface {
	// GetUserInfo reports the stored profile. When no row exists a bare
	// one is created so later updates always have a target; the result
	// still says Exists=false for that call.
	GetUserInfo(ctx context.Context, userID int64) (*UserInfoResult, error)

	// UpdateUserInfo overwrites the provided non-empty fields and
	// returns the refreshed record.
	UpdateUserInfo(ctx context.Context, userID int64, fullName, phone, address string) (*UserInfoResult, error)
}

type profileUC struct {
	profiles repository.CustomerProfileRepository
}

func NewProfileUseCase(profiles repository.CustomerProfileRepository) *profileUC {
	return &profileUC{profiles: profiles}
}

func (u *profileUC) GetUserInfo(ctx context.Context, userID int64) (*UserInfoResult, error) {
	p, err := u.profiles.Find(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		p = model.NewCustomerProfile(userID)
		if err := u.profiles.Save(ctx, nil, p); err != nil {
			return nil, err
		}
		return infoResult(p, false), nil
	}
	return infoResult(p, true), nil
}

func (u *profileUC) UpdateUserInfo(ctx context.Context, userID int64, fullName, phone, address string) (*UserInfoResult, error) {
	p, err := u.profiles.Find(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		p = model.NewCustomerProfile(userID)
	}
	if v := strings.TrimSpace(fullName); v != "" {
		p.FullName = v
	}
	if v := strings.TrimSpace(phone); v != "" {
		p.Phone = v
	}
	if v := strings.TrimSpace(address); v != "" {
		p.Address = v
	}
	if err := u.profiles.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return infoResult(p, true), nil
}

// infoResult reports completeness against the strictest mode (delivery),
// so callers see the address among missing fields until it is known.
func infoResult(p *model.CustomerProfile, exists bool) *UserInfoResult {
	missing := p.MissingFields(true)
	return &UserInfoResult{
		Exists:        exists,
		Complete:      len(missing) == 0,
		FullName:      p.FullName,
		Phone:         p.Phone,
		Address:       p.Address,
		MissingFields: missing,
	}
}
