package repository

import (
	"fmt"

	"gorm.io/gorm"

	"pdfchat/internal/model"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Session{}, &model.Message{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
