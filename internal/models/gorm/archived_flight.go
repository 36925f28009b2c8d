package gorm

import "time"

// ArchivedFlight is one flight of a saved flight log, copied into the
// optional SQL archive for range queries. The day directories stay the
// system of record.
type ArchivedFlight struct {
	ID                  uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Date                string    `gorm:"column:date;type:varchar(10);not null;index:idx_archived_day,priority:1"`
	Airfield            string    `gorm:"column:airfield;type:varchar(8);not null;index:idx_archived_day,priority:2"`
	Position            int       `gorm:"column:position;not null"`
	NetworkID           int       `gorm:"column:network_id"`
	Glider              string    `gorm:"column:glider;type:varchar(16);index"`
	TakeoffCode         string    `gorm:"column:takeoff_code;type:varchar(8)"`
	TakeoffMachine      string    `gorm:"column:takeoff_machine"`
	TakeoffMachinePilot string    `gorm:"column:takeoff_machine_pilot"`
	FlightCode          string    `gorm:"column:flight_code"`
	Pilot1              string    `gorm:"column:pilot1"`
	Pilot2              string    `gorm:"column:pilot2"`
	Takeoff             string    `gorm:"column:takeoff;type:varchar(8)"`
	Landing             string    `gorm:"column:landing;type:varchar(8)"`
	DurationMinutes     int       `gorm:"column:duration_minutes;default:0"`
	WinchPilot          string    `gorm:"column:winch_pilot"`
	Winch               string    `gorm:"column:winch"`
	TowPilot            string    `gorm:"column:tow_pilot"`
	TowPlane            string    `gorm:"column:tow_plane"`
	FieldChief          string    `gorm:"column:field_chief"`
	ArchivedAt          time.Time `gorm:"column:archived_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ArchivedFlight) TableName() string {
	return "archived_flights"
}
