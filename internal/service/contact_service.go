package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/validation"
)

type ContactService struct {
	store  *repository.Store
	runner *StoreRunner
}

func NewContactService(store *repository.Store, runner *StoreRunner) *ContactService {
	return &ContactService{store: store, runner: runner}
}

type ContactInput struct {
	Alias   *string `json:"alias"`
	Blocked bool    `json:"blocked"`
}

func (s *ContactService) Add(ctx context.Context, ownerID, contactUserID uuid.UUID, in ContactInput) (*models.Contact, error) {
	if ownerID == contactUserID {
		return nil, apperrors.ErrSelfContact
	}
	if err := validation.ValidateAlias(in.Alias); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.runner, s.store, contactUserID); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		OwnerID:       ownerID,
		ContactUserID: contactUserID,
		Alias:         in.Alias,
		Blocked:       in.Blocked,
	}
	err := s.runner.Run(ctx, "contacts.Create", func(ctx context.Context) error {
		return s.store.Contacts.Create(ctx, contact)
	})
	if repository.IsDuplicate(err) {
		return nil, apperrors.New(apperrors.CodeAlreadyExists, "contact already exists")
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, ownerID, contactUserID uuid.UUID, in ContactInput) (*models.Contact, error) {
	if err := validation.ValidateAlias(in.Alias); err != nil {
		return nil, err
	}
	contact := &models.Contact{
		OwnerID:       ownerID,
		ContactUserID: contactUserID,
		Alias:         in.Alias,
		Blocked:       in.Blocked,
	}
	err := s.runner.Run(ctx, "contacts.Update", func(ctx context.Context) error {
		return s.store.Contacts.Update(ctx, contact)
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.runner.Run(ctx, "contacts.List", func(ctx context.Context) error {
		var err error
		contacts, err = s.store.Contacts.List(ctx, ownerID)
		return err
	})
	return contacts, err
}
