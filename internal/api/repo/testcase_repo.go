package repo

import (
	"apiflow"
	"apiflow/internal/api/models"

	"gorm.io/gorm"
)

type TestCaseRepository struct {
	Db *gorm.DB
}

func NewTestCaseRepository() *TestCaseRepository {
	return &TestCaseRepository{Db: apiflow.DB}
}

// FindByID retrieves a test case by ID
func (slf *TestCaseRepository) FindByID(id uint) (models.TestCase, error) {
	var testCase models.TestCase
	err := slf.Db.First(&testCase, id).Error
	return testCase, err
}
