package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
)

// StockSet is the full replaceable set of stock rows for (Type, TransactionId[, LocationId]).
// LocationId 0 addresses the rows of every location.
type StockSet struct {
	Type          models.StockType
	TransactionId int
	LocationId    int
	Entries       []models.StockLedgerEntry
}

// StockSource identifies the transaction a movement comes from.
type StockSource struct {
	Type            models.StockType
	TransactionId   int
	TransactionNo   string
	TransactionDate time.Time
}

// StockMovement is a signed quantity of one item at one location.
type StockMovement struct {
	ItemId     int
	ItemType   models.ItemType
	Quantity   decimal.Decimal
	NetRate    decimal.Decimal
	LocationId int
}

type StockLedgerProjector struct {
	settings SettingsProvider
	recipes  RecipeProvider
}

func NewStockLedgerProjector(settings SettingsProvider, recipes RecipeProvider) *StockLedgerProjector {
	return &StockLedgerProjector{settings: settings, recipes: recipes}
}

// Project turns movements into a stock set. Finished products moving at the
// recipe-managed location also move their raw materials, with the opposite sign.
func (p *StockLedgerProjector) Project(uow models.UnitOfWork, src StockSource, movements []StockMovement) (StockSet, error) {
	set := StockSet{Type: src.Type, TransactionId: src.TransactionId}

	recipeLocationId, err := p.recipeLocationId(uow)
	if err != nil {
		return set, err
	}

	for _, m := range movements {
		set.Entries = append(set.Entries, entryFor(src, m))
		if m.ItemType != models.ItemTypeProduct || recipeLocationId == 0 || m.LocationId != recipeLocationId {
			continue
		}
		raw, err := p.explode(uow, m)
		if err != nil {
			return set, err
		}
		for _, r := range raw {
			set.Entries = append(set.Entries, entryFor(src, r))
		}
	}
	return set, nil
}

func (p *StockLedgerProjector) recipeLocationId(uow models.UnitOfWork) (int, error) {
	id, err := p.settings.SettingInt(uow, models.SettingRecipeLocationId)
	if errors.Is(err, models.ErrSettingNotFound) {
		return 0, nil
	}
	return id, err
}

func (p *StockLedgerProjector) explode(uow models.UnitOfWork, m StockMovement) ([]StockMovement, error) {
	lines, err := p.recipes.ActiveRecipeLines(uow, m.ItemId)
	if err != nil {
		return nil, err
	}
	var out []StockMovement
	for _, l := range lines {
		ratio := l.Quantity
		if !ratio.IsPositive() {
			continue
		}
		out = append(out, StockMovement{
			ItemId:     l.ItemId,
			ItemType:   models.ItemTypeRawMaterial,
			Quantity:   m.Quantity.Mul(ratio).Neg(),
			NetRate:    m.NetRate.DivRound(ratio, 4),
			LocationId: m.LocationId,
		})
	}
	return out, nil
}

func entryFor(src StockSource, m StockMovement) models.StockLedgerEntry {
	return models.StockLedgerEntry{
		ItemId:          m.ItemId,
		ItemType:        m.ItemType,
		Quantity:        m.Quantity,
		NetRate:         m.NetRate,
		Type:            src.Type,
		TransactionId:   src.TransactionId,
		TransactionNo:   src.TransactionNo,
		TransactionDate: src.TransactionDate,
		LocationId:      m.LocationId,
	}
}

// Replace deletes every stored row of the set's key and inserts the new entries.
func (p *StockLedgerProjector) Replace(uow models.UnitOfWork, set StockSet) error {
	if err := p.Clear(uow, set.Type, set.TransactionId, set.LocationId); err != nil {
		return err
	}
	if len(set.Entries) == 0 {
		return nil
	}
	for i := range set.Entries {
		set.Entries[i].ID = 0
	}
	if err := uow.DB().Create(&set.Entries).Error; err != nil {
		return err
	}
	for i, e := range set.Entries {
		if e.ID == 0 {
			return fmt.Errorf("%w: stock entry %d of %s %d", utils.ErrPostingFailed, i+1, set.Type, set.TransactionId)
		}
	}
	return nil
}

func (p *StockLedgerProjector) Clear(uow models.UnitOfWork, stockType models.StockType, transactionId int, locationId int) error {
	q := uow.DB().Where("type = ? AND transaction_id = ?", stockType, transactionId)
	if locationId > 0 {
		q = q.Where("location_id = ?", locationId)
	}
	return q.Delete(&models.StockLedgerEntry{}).Error
}
