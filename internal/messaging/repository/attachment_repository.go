package repository

import (
	"errors"

	"school_messaging_service/internal/messaging/domain"

	"gorm.io/gorm"
)

// AttachmentRepository persists attachment metadata independently of
// whether the owning message ever makes it to the remote store.
type AttachmentRepository interface {
	AutoMigrate() error
	Create(att *domain.Attachment) error
	GetByID(id string) (*domain.Attachment, error)
}

type attachmentRepo struct {
	db *gorm.DB
}

// NewAttachmentRepo create AttachmentRepository
func NewAttachmentRepo(db *gorm.DB) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Attachment{})
}

func (r *attachmentRepo) Create(att *domain.Attachment) error {
	return r.db.Create(att).Error
}

func (r *attachmentRepo) GetByID(id string) (*domain.Attachment, error) {
	var att domain.Attachment
	if err := r.db.First(&att, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}
