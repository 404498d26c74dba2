package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setting keys holding the control ledgers, vouchers and special locations.
const (
	SettingPrimaryLocationId      = "PrimaryLocationId"
	SettingRecipeLocationId       = "RecipeLocationId"
	SettingCashLedgerId           = "CashLedgerId"
	SettingSaleLedgerId           = "SaleLedgerId"
	SettingStockTransferLedgerId  = "StockTransferLedgerId"
	SettingTaxLedgerId            = "TaxLedgerId"
	SettingSaleVoucherId          = "SaleVoucherId"
	SettingStockTransferVoucherId = "StockTransferVoucherId"
	SettingJournalVoucherId       = "JournalVoucherId"
)

var ErrSettingNotFound = errors.New("setting not found")

type Setting struct {
	Key   string `gorm:"primaryKey;size:100" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`
}

// SettingsStore reads key/value settings through an optional Redis cache.
type SettingsStore struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewSettingsStore(cache *redis.Client, ttl time.Duration) *SettingsStore {
	return &SettingsStore{cache: cache, ttl: ttl}
}

func settingCacheKey(key string) string {
	return "Setting:" + key
}

func (s *SettingsStore) SettingValue(uow UnitOfWork, key string) (string, error) {
	ctx := uow.Context()
	if s.cache != nil {
		val, err := s.cache.Get(ctx, settingCacheKey(key)).Result()
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, redis.Nil) {
			return "", err
		}
	}

	var setting Setting
	err := uow.DB().Where(&Setting{Key: key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingCacheKey(key), setting.Value, s.ttl).Err(); err != nil {
			return "", err
		}
	}
	return setting.Value, nil
}

func (s *SettingsStore) SettingInt(uow UnitOfWork, key string) (int, error) {
	val, err := s.SettingValue(uow, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return n, nil
}

// SaveSetting upserts a setting and drops its cached value.
func (s *SettingsStore) SaveSetting(uow UnitOfWork, key string, value string) error {
	if err := uow.DB().Save(&Setting{Key: key, Value: value}).Error; err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.Del(uow.Context(), settingCacheKey(key)).Err()
	}
	return nil
}
