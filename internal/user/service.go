package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	FindAll(ctx context.Context) ([]UserDto, error)
	FindByID(ctx context.Context, id int64) (*UserDto, error)
	CreateUser(ctx context.Context, dto UserDto) (*UserDto, error)
	UpdateUser(ctx context.Context, dto UserDto) (*UserDto, error)
	DeleteUser(ctx context.Context, id int64) error
}

type service struct {
	repo    Repository
	encoder PasswordEncoder
}

func NewService(repo Repository, encoder PasswordEncoder) Service {
	return &service{
		repo:    repo,
		encoder: encoder,
	}
}

func (s *service) FindAll(ctx context.Context) ([]UserDto, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch users in repository")
		return nil, fmt.Errorf("service: failed to fetch users: %w", err)
	}

	dtos := make([]UserDto, 0, len(users))
	for i := range users {
		dtos = append(dtos, ToDto(&users[i]))
	}

	return dtos, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*UserDto, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("user_id", id).Msg("service: user not found by id")
			return nil, &NotFoundError{ID: id}
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id in repository")
		return nil, fmt.Errorf("service: failed to get user by id %d: %w", id, err)
	}

	dto := ToDto(u)
	return &dto, nil
}

func (s *service) CreateUser(ctx context.Context, dto UserDto) (*UserDto, error) {
	if dto.Password == nil || *dto.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := s.encoder.Encode(*dto.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		log.Error().Err(err).Msg("service: failed to encode password")
		return nil, fmt.Errorf("service: internal error hashing password: %w", err)
	}

	record := User{
		FullName:          dto.FullName,
		Username:          dto.Username,
		Email:             dto.Email,
		EncryptedPassword: hash,
	}

	saved, err := s.repo.Save(ctx, &record)
	if err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrUsernameExists) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to save user: %w", err)
	}

	log.Info().Int64("user_id", saved.ID).Msg("service: user created")

	created := ToDto(saved)
	return &created, nil
}

// UpdateUser overwrites full name, username and email of the stored record.
// Empty input fields keep the stored value. A supplied password replaces the hash.
func (s *service) UpdateUser(ctx context.Context, dto UserDto) (*UserDto, error) {
	existing, err := s.repo.FindByID(ctx, dto.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("user_id", dto.ID).Msg("service: user not found, cannot update")
			return nil, &NotFoundError{ID: dto.ID}
		}
		log.Error().Err(err).Int64("user_id", dto.ID).Msg("service: failed to get user for update")
		return nil, fmt.Errorf("service: failed to get user for update: %w", err)
	}

	if dto.FullName != "" {
		existing.FullName = dto.FullName
	}
	if dto.Username != "" {
		existing.Username = dto.Username
	}
	if dto.Email != "" {
		existing.Email = dto.Email
	}

	if dto.Password != nil && *dto.Password != "" {
		hash, err := s.encoder.Encode(*dto.Password)
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		if err != nil {
			log.Error().Err(err).Int64("user_id", dto.ID).Msg("service: failed to encode password")
			return nil, fmt.Errorf("service: failed to generate hash password: %w", err)
		}
		existing.EncryptedPassword = hash
	}

	saved, err := s.repo.Save(ctx, existing)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Warn().Int64("user_id", dto.ID).Msg("service: user disappeared during update")
			return nil, &NotFoundError{ID: dto.ID}
		case errors.Is(err, ErrEmailExists), errors.Is(err, ErrUsernameExists):
			return nil, err
		}
		log.Error().Err(err).Int64("user_id", dto.ID).Msg("service: failed to update user")
		return nil, fmt.Errorf("service: failed to update user by id %d: %w", dto.ID, err)
	}

	updated := ToDto(saved)
	return &updated, nil
}

func (s *service) DeleteUser(ctx context.Context, id int64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to check user existence")
		return fmt.Errorf("service: failed to delete user by id %d: %w", id, err)
	}
	if !exists {
		log.Warn().Int64("user_id", id).Msg("service: user not found, cannot delete")
		return &NotFoundError{ID: id}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user by id %d: %w", id, err)
	}

	log.Info().Int64("user_id", id).Msg("service: user deleted")
	return nil
}
