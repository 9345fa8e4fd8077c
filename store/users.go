package store

import (
	"context"
	"errors"

	"github.com/yanashcherbakova/QueueTubeBot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore interface {
	CreateTable() error
	Ensure(ctx context.Context, externalID int64, displayName string) (int64, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.UserDBModel, error)
	DB() *gorm.DB
}

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{
		db: db,
	}
}

func (us *userStore) table() string {
	return "users"
}

func (us *userStore) DB() *gorm.DB {
	return us.db
}

func (us *userStore) CreateTable() error {
	return us.db.Table(us.table()).AutoMigrate(&models.UserDBModel{})
}

// Ensure upserts a user keyed on the external chat identity and returns
// the internal id. On conflict no column is touched, the existing id is
// fetched instead.
func (us *userStore) Ensure(ctx context.Context, externalID int64, displayName string) (int64, error) {
	user := models.UserDBModel{ExternalID: externalID, DisplayName: displayName}

	res := us.db.WithContext(ctx).Table(us.table()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(&user)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		return user.ID, nil
	}

	existing, err := us.GetByExternalID(ctx, externalID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, models.ErrUpsertRace
	}
	return existing.ID, nil
}

func (us *userStore) GetByExternalID(ctx context.Context, externalID int64) (*models.UserDBModel, error) {
	var user models.UserDBModel
	if err := us.db.WithContext(ctx).Table(us.table()).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}
