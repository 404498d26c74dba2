package models

import (
	"errors"

	"gorm.io/gorm"
)

// Recipe is the bill of materials of one finished product. Saving a new version
// supersedes the previous line set; only active lines explode into stock.
type Recipe struct {
	TransactionBase
	ProductId int `gorm:"index;not null" json:"product_id" validate:"required"`
}

// RecipeDetail is one raw material of a recipe. ItemId is the raw material and
// Quantity is the amount consumed per unit of product.
type RecipeDetail struct {
	LineBase
}

type RecipeStore struct{}

// ActiveRecipe returns the active recipe of productId, or nil.
func (RecipeStore) ActiveRecipe(uow UnitOfWork, productId int) (*Recipe, error) {
	var recipe Recipe
	err := uow.DB().Where("product_id = ? AND status = ?", productId, true).Order("id DESC").First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s RecipeStore) ActiveRecipeLines(uow UnitOfWork, productId int) ([]*RecipeDetail, error) {
	recipe, err := s.ActiveRecipe(uow, productId)
	if err != nil || recipe == nil {
		return nil, err
	}
	var lines []*RecipeDetail
	if err := uow.DB().Where("master_id = ? AND status = ?", recipe.ID, true).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
