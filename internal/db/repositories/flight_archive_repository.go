package repositories

import (
	"context"
	"fmt"

	gormlib "gorm.io/gorm"

	"github.com/planche-electronique/cepo/internal/models/entities"
	"github.com/planche-electronique/cepo/internal/models/gorm"
)

// GliderStat aggregates the archived flights of one glider.
type GliderStat struct {
	Glider  string `gorm:"column:glider" json:"glider"`
	Flights int64  `gorm:"column:flights" json:"flights"`
	Minutes int64  `gorm:"column:minutes" json:"minutes"`
}

// FlightArchiveRepo handles archived_flights table operations
type FlightArchiveRepo struct {
	db *gormlib.DB
}

// NewFlightArchiveRepo creates a new flight archive repository
func NewFlightArchiveRepo(db *gormlib.DB) *FlightArchiveRepo {
	return &FlightArchiveRepo{db: db}
}

// Migrate creates or updates the archive table.
func (r *FlightArchiveRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&gorm.ArchivedFlight{})
}

// Ping checks the archive connection.
func (r *FlightArchiveRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ArchiveDay replaces every archived flight of the log's day and airfield
// with the log's current flights, in one transaction.
func (r *FlightArchiveRepo) ArchiveDay(ctx context.Context, log entities.FlightLog) error {
	rows := toArchivedFlights(log)
	date := log.Date.ISO()

	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("date = ? AND airfield = ?", date, log.Airfield).
			Delete(&gorm.ArchivedFlight{}).Error; err != nil {
			return fmt.Errorf("clear archived day %s/%s: %w", log.Airfield, date, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("archive day %s/%s: %w", log.Airfield, date, err)
		}
		return nil
	})
}

// FindDay returns the archived flights of one day in log order.
func (r *FlightArchiveRepo) FindDay(ctx context.Context, day entities.Day, airfield string) ([]gorm.ArchivedFlight, error) {
	var rows []gorm.ArchivedFlight
	err := r.db.WithContext(ctx).
		Where("date = ? AND airfield = ?", day.ISO(), airfield).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GliderStats counts flights and airborne minutes per glider between from and
// to inclusive. An empty airfield covers every airfield.
func (r *FlightArchiveRepo) GliderStats(ctx context.Context, from, to entities.Day, airfield string) ([]GliderStat, error) {
	var stats []GliderStat

	q := r.db.WithContext(ctx).
		Model(&gorm.ArchivedFlight{}).
		Select("glider, COUNT(*) AS flights, COALESCE(SUM(duration_minutes), 0) AS minutes").
		Where("date >= ? AND date <= ?", from.ISO(), to.ISO())
	if airfield != "" {
		q = q.Where("airfield = ?", airfield)
	}

	err := q.Group("glider").Order("flights DESC, glider").Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func toArchivedFlights(log entities.FlightLog) []gorm.ArchivedFlight {
	rows := make([]gorm.ArchivedFlight, 0, len(log.Flights))
	for i, f := range log.Flights {
		rows = append(rows, gorm.ArchivedFlight{
			Date:                log.Date.ISO(),
			Airfield:            log.Airfield,
			Position:            i,
			NetworkID:           f.NetworkID,
			Glider:              f.Glider,
			TakeoffCode:         string(f.TakeoffCode),
			TakeoffMachine:      f.TakeoffMachine,
			TakeoffMachinePilot: f.TakeoffMachinePilot,
			FlightCode:          f.FlightCode,
			Pilot1:              f.Pilot1,
			Pilot2:              f.Pilot2,
			Takeoff:             f.Takeoff.String(),
			Landing:             f.Landing.String(),
			DurationMinutes:     f.Duration(),
			WinchPilot:          log.Crew.WinchPilot,
			Winch:               log.Crew.Winch,
			TowPilot:            log.Crew.TowPilot,
			TowPlane:            log.Crew.TowPlane,
			FieldChief:          log.Crew.FieldChief,
		})
	}
	return rows
}
