package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/transfer"
	"github.com/maheshrc27/storyflow/pkg/utils"
)

// PlatformService manages the account credentials stories are published with.
// Passwords are stored encrypted and never returned.
type PlatformService interface {
	Get(ctx context.Context, id int64) (*models.Platform, error)
	SetCredentials(ctx context.Context, id int64, pc *transfer.PlatformCredentials) error
}

type platformService struct {
	pr    repository.PlatformRepository
	codec *utils.CredentialCodec
}

func NewPlatformService(pr repository.PlatformRepository, codec *utils.CredentialCodec) PlatformService {
	return &platformService{
		pr:    pr,
		codec: codec,
	}
}

func (s *platformService) Get(ctx context.Context, id int64) (*models.Platform, error) {
	platform, err := s.pr.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting platform: %w", err)
	}
	if platform == nil {
		return nil, ErrPlatformNotFound
	}
	return platform, nil
}

func (s *platformService) SetCredentials(ctx context.Context, id int64, pc *transfer.PlatformCredentials) error {
	if pc == nil || strings.TrimSpace(pc.Login) == "" || pc.Password == "" {
		err := errors.New("login and password are required")
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	encrypted, err := s.codec.Encrypt(pc.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	if err := s.pr.UpdateCredentials(ctx, id, strings.TrimSpace(pc.Login), encrypted); err != nil {
		return fmt.Errorf("error saving credentials: %w", err)
	}

	slog.Info("platform credentials updated", "platform_id", id)
	return nil
}
