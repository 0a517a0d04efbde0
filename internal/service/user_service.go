package service

import (
	"context"
	"fmt"

	"votist/internal/domain"
)

// UserService covers the caller's own account.
type UserService interface {
	// InitUser resolves the caller into a local user and seeds quiz progress.
	// It returns the number of progress rows created.
	InitUser(ctx context.Context, identity domain.Identity) (*domain.User, int, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type userServiceImpl struct {
	userRepo domain.UserRepository
	resolver IdentityResolver
	progress ProgressService
}

func NewUserService(userRepo domain.UserRepository, resolver IdentityResolver, progress ProgressService) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		resolver: resolver,
		progress: progress,
	}
}

func (s *userServiceImpl) InitUser(ctx context.Context, identity domain.Identity) (*domain.User, int, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, 0, err
	}
	created, err := s.progress.InitializeProgress(ctx, user.ID)
	if err != nil {
		return nil, 0, err
	}
	return user, created, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}
	return user, nil
}
