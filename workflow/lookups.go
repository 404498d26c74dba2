package workflow

import (
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
)

type FinancialYearProvider interface {
	FinancialYearByDate(uow models.UnitOfWork, date time.Time) (*models.FinancialYear, error)
}

// SettingsProvider maps configuration keys to control-ledger, voucher and location ids.
type SettingsProvider interface {
	SettingInt(uow models.UnitOfWork, key string) (int, error)
}

type RecipeProvider interface {
	ActiveRecipeLines(uow models.UnitOfWork, productId int) ([]*models.RecipeDetail, error)
}

type LocationProvider interface {
	Location(uow models.UnitOfWork, id int) (*models.Location, error)
	LocationByLedger(uow models.UnitOfWork, ledgerId int) (*models.Location, bool, error)
}

// Lookups bundles the read-only collaborators every operation is given explicitly.
type Lookups struct {
	Years     FinancialYearProvider
	Settings  SettingsProvider
	Recipes   RecipeProvider
	Locations LocationProvider
}

func DefaultLookups(settings *models.SettingsStore) Lookups {
	return Lookups{
		Years:     models.FinancialYearStore{},
		Settings:  settings,
		Recipes:   models.RecipeStore{},
		Locations: models.LocationStore{},
	}
}
