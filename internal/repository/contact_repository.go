package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(contact).Error
	return errors.Wrap(err, "contacts.Create")
}

func (r *ContactRepository) Get(ctx context.Context, ownerID, contactUserID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND contact_user_id = ?", ownerID, contactUserID).
		First(&contact).Error
	if err != nil {
		return nil, errors.Wrap(err, "contacts.Get")
	}
	return &contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("owner_id = ? AND contact_user_id = ?", contact.OwnerID, contact.ContactUserID).
		Updates(map[string]interface{}{
			"alias":   contact.Alias,
			"blocked": contact.Blocked,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "contacts.Update")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, "contacts.Update")
	}
	return nil
}

func (r *ContactRepository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where("owner_id = ?", ownerID).
		Order("contact_user_id").
		Find(&contacts).Error
	return contacts, errors.Wrap(err, "contacts.List")
}
