package database

import (
	"github.com/Socialmailz/TNB-Text/internal/models"
)

func (d *Database) SaveAccount(account *models.Account) error {
	return d.db.Create(account).Error
}

func (d *Database) FindAccountByEmail(email string) (*models.Account, error) {
	account := models.Account{}
	if err := d.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
