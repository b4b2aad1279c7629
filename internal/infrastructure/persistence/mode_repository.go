package persistence

import (
	"context"
	"fmt"

	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultModes are the GTFS basic and extended route types seeded into
// mode_lookup_table
var DefaultModes = []evaluation.Mode{
	{ID: 0, Name: "Tram, Streetcar, Light rail"},
	{ID: 1, Name: "Subway, Metro"},
	{ID: 2, Name: "Rail"},
	{ID: 3, Name: "Bus"},
	{ID: 4, Name: "Ferry"},
	{ID: 5, Name: "Cable tram"},
	{ID: 6, Name: "Aerial lift, suspended cable car"},
	{ID: 7, Name: "Funicular"},
	{ID: 11, Name: "Trolleybus"},
	{ID: 12, Name: "Monorail"},
	{ID: 100, Name: "Railway Service"},
	{ID: 101, Name: "High Speed Rail Service"},
	{ID: 102, Name: "Long Distance Trains"},
	{ID: 103, Name: "Inter Regional Rail Service"},
	{ID: 105, Name: "Sleeper Rail Service"},
	{ID: 106, Name: "Regional Rail Service"},
	{ID: 107, Name: "Tourist Railway Service"},
	{ID: 109, Name: "Suburban Railway"},
	{ID: 200, Name: "Coach Service"},
	{ID: 201, Name: "International Coach Service"},
	{ID: 202, Name: "National Coach Service"},
	{ID: 204, Name: "Regional Coach Service"},
	{ID: 208, Name: "Commuter Coach Service"},
	{ID: 400, Name: "Urban Railway Service"},
	{ID: 401, Name: "Metro Service"},
	{ID: 402, Name: "Underground Service"},
	{ID: 405, Name: "Monorail"},
	{ID: 700, Name: "Bus Service"},
	{ID: 701, Name: "Regional Bus Service"},
	{ID: 702, Name: "Express Bus Service"},
	{ID: 704, Name: "Local Bus Service"},
	{ID: 715, Name: "Demand and Response Bus Service"},
	{ID: 717, Name: "Share Taxi Service"},
	{ID: 800, Name: "Trolleybus Service"},
	{ID: 900, Name: "Tram Service"},
	{ID: 1000, Name: "Water Transport Service"},
	{ID: 1100, Name: "Air Service"},
	{ID: 1200, Name: "Ferry Service"},
	{ID: 1300, Name: "Aerial Lift Service"},
	{ID: 1400, Name: "Funicular Service"},
	{ID: 1500, Name: "Taxi Service"},
	{ID: 1700, Name: "Miscellaneous Service"},
}

// GormModeRepository implements ModeRepository using GORM
type GormModeRepository struct {
	db *gorm.DB
}

// NewGormModeRepository creates a new GormModeRepository
func NewGormModeRepository(db *gorm.DB) *GormModeRepository {
	return &GormModeRepository{db: db}
}

// FindAll returns every mode ordered by route type
func (r *GormModeRepository) FindAll(ctx context.Context) ([]evaluation.Mode, error) {
	var rows []models.ModeModel
	if err := r.db.WithContext(ctx).Order("mode_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	modes := make([]evaluation.Mode, len(rows))
	for i := range rows {
		modes[i] = rows[i].ToDomain()
	}
	return modes, nil
}

// SeedModes inserts DefaultModes, leaving existing rows untouched
func SeedModes(db *gorm.DB) error {
	rows := make([]models.ModeModel, len(DefaultModes))
	for i, m := range DefaultModes {
		rows[i] = models.ModeModel{ID: m.ID, Name: m.Name}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed modes: %w", err)
	}
	return nil
}

var _ evaluation.ModeRepository = (*GormModeRepository)(nil)
