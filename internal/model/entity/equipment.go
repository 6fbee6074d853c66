package entity

import (
	"errors"
	"regexp"
	"time"
)

// Equipment types accepted by the JSON API and the binary store.
const (
	EquipmentTypeKalmar32 = "kalmar32"
	EquipmentTypePhasar32 = "phasar32"
)

// CalibrationExpireDays is the service interval after which a unit's
// calibration is considered stale.
const CalibrationExpireDays = 365

var serialNumberRe = regexp.MustCompile(`^[0-9]+$`)

// Validation errors shared by both equipment twins.
var (
	ErrSerialFormat        = errors.New("serial number must contain only digits")
	ErrShipmentInFuture    = errors.New("shipment date cannot be in the future")
	ErrCalibrationInFuture = errors.New("calibration date cannot be in the future")
	ErrWeightNegative      = errors.New("weight must be a positive number")
)

func validateEquipment(serial string, shipment time.Time, calibration *time.Time, weight *float64) error {
	if !serialNumberRe.MatchString(serial) {
		return ErrSerialFormat
	}
	today := endOfToday()
	if shipment.After(today) {
		return ErrShipmentInFuture
	}
	if calibration != nil && calibration.After(today) {
		return ErrCalibrationInFuture
	}
	if weight != nil && *weight < 0 {
		return ErrWeightNegative
	}
	return nil
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// Kalmar32 is the digital twin of a shipped Kalmar 32 flaw-detector unit:
// registration data, component serials, calibration state and the spare
// part kit checklist.
type Kalmar32 struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	SerialNumber string    `json:"serial_number" gorm:"size:50;not null;uniqueIndex"`
	ShipmentDate time.Time `json:"shipment_date" gorm:"not null;index:,sort:desc"`
	CaseNumber   string    `json:"case_number,omitempty" gorm:"size:50"`

	// Component serials
	FirstPhasedArrayConverter  string `json:"first_phased_array_converter,omitempty" gorm:"size:50"`
	SecondPhasedArrayConverter string `json:"second_phased_array_converter,omitempty" gorm:"size:50"`
	BatteryCase                string `json:"battery_case,omitempty" gorm:"size:50"`
	AOSBlock                   string `json:"aos_block,omitempty" gorm:"size:50"`
	FlashDrive                 string `json:"flash_drive,omitempty" gorm:"size:50"`
	CO3RMeasure                string `json:"co3r_measure,omitempty" gorm:"size:50"`
	ManualInclined             string `json:"manual_inclined,omitempty" gorm:"size:50"`
	Straight                   string `json:"straight,omitempty" gorm:"size:50"`

	// Certification
	CalibrationCertificate string     `json:"calibration_certificate,omitempty" gorm:"size:100"`
	CalibrationDate        *time.Time `json:"calibration_date,omitempty"`

	// Spare part kit
	HasTabletScrews  bool   `json:"has_tablet_screws" gorm:"not null;default:false"`
	HasEthernetCable bool   `json:"has_ethernet_cable" gorm:"not null;default:false"`
	HasToolKit       bool   `json:"has_tool_kit" gorm:"not null;default:false"`
	BatteryCharger   string `json:"battery_charger,omitempty" gorm:"size:50"`
	TabletCharger    string `json:"tablet_charger,omitempty" gorm:"size:50"`

	// Checks and documentation
	SoftwareCheck string   `json:"software_check,omitempty" gorm:"size:200"`
	PhotoVideoURL string   `json:"photo_video_url,omitempty" gorm:"size:512"`
	PhotoURL      string   `json:"photo_url,omitempty" gorm:"size:512"`
	Weight        *float64 `json:"weight,omitempty"`
	Notes         string   `json:"notes,omitempty" gorm:"type:text"`

	LicenseID *string   `json:"license_id,omitempty" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	License *License `json:"license,omitempty" gorm:"foreignKey:LicenseID"`
	Reports []Report `json:"reports,omitempty" gorm:"foreignKey:KalmarID"`
}

func (Kalmar32) TableName() string {
	return "kalmar32_units"
}

// Validate applies the save-time invariants of the unit.
func (k *Kalmar32) Validate() error {
	return validateEquipment(k.SerialNumber, k.ShipmentDate, k.CalibrationDate, k.Weight)
}

// Phasar32 is the digital twin of a shipped Phasar 32 unit. It carries
// its own configuration checklist, parallel to Kalmar32.
type Phasar32 struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	SerialNumber string    `json:"serial_number" gorm:"size:50;not null;uniqueIndex"`
	ShipmentDate time.Time `json:"shipment_date" gorm:"not null;index:,sort:desc"`
	CaseNumber   string    `json:"case_number,omitempty" gorm:"size:50"`

	// Component serials
	PhasedArrayConverter string `json:"phased_array_converter,omitempty" gorm:"size:50"`
	BatteryCase          string `json:"battery_case,omitempty" gorm:"size:50"`
	AOSBlock             string `json:"aos_block,omitempty" gorm:"size:50"`
	FlashDrive           string `json:"flash_drive,omitempty" gorm:"size:50"`

	// Certification
	CalibrationCertificate string     `json:"calibration_certificate,omitempty" gorm:"size:100"`
	CalibrationDate        *time.Time `json:"calibration_date,omitempty"`

	// Delivery kit
	HasDCCableBattery     bool `json:"has_dc_cable_battery" gorm:"not null;default:false"`
	HasEthernetCables     bool `json:"has_ethernet_cables" gorm:"not null;default:false"`
	HasRepairToolBag      bool `json:"has_repair_tool_bag" gorm:"not null;default:false"`
	HasInstalledNameplate bool `json:"has_installed_nameplate" gorm:"not null;default:false"`

	// Checks and documentation
	SoftwareCheck string   `json:"software_check,omitempty" gorm:"size:200"`
	PhotoURL      string   `json:"photo_url,omitempty" gorm:"size:512"`
	Weight        *float64 `json:"weight,omitempty"`
	Notes         string   `json:"notes,omitempty" gorm:"type:text"`

	LicenseID *string   `json:"license_id,omitempty" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	License *License `json:"license,omitempty" gorm:"foreignKey:LicenseID"`
	Reports []Report `json:"reports,omitempty" gorm:"foreignKey:PhasarID"`
}

func (Phasar32) TableName() string {
	return "phasar32_units"
}

// Validate applies the save-time invariants of the unit.
func (p *Phasar32) Validate() error {
	return validateEquipment(p.SerialNumber, p.ShipmentDate, p.CalibrationDate, p.Weight)
}
