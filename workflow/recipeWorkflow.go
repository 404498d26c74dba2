package workflow

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

// recipeDefinition versions the bill of materials of a product. Only the latest saved
// recipe of a product stays active.
type recipeDefinition struct{}

func (recipeDefinition) Kind() string                   { return "Recipe" }
func (recipeDefinition) NewHeader() *models.Recipe      { return &models.Recipe{} }
func (recipeDefinition) NewLine() *models.RecipeDetail  { return &models.RecipeDetail{} }
func (recipeDefinition) StockTypes() []models.StockType { return nil }
func (recipeDefinition) NumberScope(h *models.Recipe) NumberScope {
	return NumberScope{Prefix: PrefixRecipe}
}

func (recipeDefinition) Prepare(uow models.UnitOfWork, h *models.Recipe, lines []*models.RecipeDetail) error {
	if h.ProductId == 0 {
		return fmt.Errorf("%w: recipe product is required", utils.ErrInvalidTransaction)
	}
	for i, l := range lines {
		if l.ItemId == h.ProductId {
			return fmt.Errorf("%w: line %d consumes the product itself", utils.ErrInvalidTransaction, i+1)
		}
	}
	if err := checkPositiveQuantities(lines); err != nil {
		return err
	}

	// supersede
	q := uow.DB().Model(&models.Recipe{}).Where("product_id = ? AND status = ?", h.ProductId, true)
	if h.ID > 0 {
		q = q.Where("id <> ?", h.ID)
	}
	return q.Update("status", false).Error
}

func (recipeDefinition) IsLinked(uow models.UnitOfWork, h *models.Recipe) (bool, error) {
	return false, nil
}

func (recipeDefinition) StockSets(uow models.UnitOfWork, h *models.Recipe, lines []*models.RecipeDetail) ([]StockSet, error) {
	return nil, nil
}

func (recipeDefinition) PostingKey(uow models.UnitOfWork, h *models.Recipe) (*PostingKey, error) {
	return nil, nil
}

func (recipeDefinition) Posting(uow models.UnitOfWork, h *models.Recipe, lines []*models.RecipeDetail) (*PostingOverview, error) {
	return nil, nil
}
