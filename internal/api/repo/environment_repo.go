package repo

import (
	"apiflow"
	"apiflow/internal/api/models"

	"gorm.io/gorm"
)

type EnvironmentRepository struct {
	Db *gorm.DB
}

func NewEnvironmentRepository() *EnvironmentRepository {
	return &EnvironmentRepository{Db: apiflow.DB}
}

// FindByID retrieves an environment by ID
func (slf *EnvironmentRepository) FindByID(id uint) (models.Environment, error) {
	var env models.Environment
	err := slf.Db.First(&env, id).Error
	return env, err
}
