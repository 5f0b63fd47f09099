package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrDuplicateURL = errors.New("site with this URL already exists")
	ErrSiteNotFound = errors.New("site not found")
)

type Database struct {
	db *gorm.DB
}

func New(dbPath string) (*Database, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Site{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddSite creates a site in status unknown. URLs are unique; adding an
// existing one fails with ErrDuplicateURL.
func (d *Database) AddSite(url string) (*Site, error) {
	var count int64
	if err := d.db.Model(&Site{}).Where("url = ?", url).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateURL
	}

	site := &Site{URL: url, Status: StatusUnknown}
	if err := d.db.Create(site).Error; err != nil {
		return nil, err
	}
	return site, nil
}

func (d *Database) GetSite(id uint) (*Site, error) {
	var s Site
	err := d.db.First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSiteNotFound
	}
	return &s, err
}

func (d *Database) ListSites() ([]Site, error) {
	var sites []Site
	err := d.db.Order("id asc").Find(&sites).Error
	return sites, err
}

func (d *Database) DeleteSite(id uint) error {
	res := d.db.Delete(&Site{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSiteNotFound
	}
	return nil
}

// RecordDown marks a site down, stamping both the transition time and
// the start of the outage.
func (d *Database) RecordDown(id uint) error {
	now := time.Now()
	return d.db.Model(&Site{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             StatusDown,
		"last_checked":       now,
		"last_status_change": now,
		"last_down_at":       now,
	}).Error
}

// RecordUp marks a site up. LastDownAt is deliberately left alone.
func (d *Database) RecordUp(id uint) error {
	now := time.Now()
	return d.db.Model(&Site{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             StatusUp,
		"last_checked":       now,
		"last_status_change": now,
	}).Error
}

func (d *Database) UpdateCheckedTime(id uint) error {
	return d.db.Model(&Site{}).Where("id = ?", id).Update("last_checked", time.Now()).Error
}

// GetCredential returns the stored value for a settings key, or an
// empty string if it was never set.
func (d *Database) GetCredential(key string) (string, error) {
	var s Setting
	err := d.db.First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

func (d *Database) SetCredential(key, value string) error {
	setting := Setting{Key: key, Value: value}
	return d.db.Save(&setting).Error
}
