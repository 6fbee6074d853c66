package entity

import (
	"errors"
	"time"
)

// Maintenance check levels.
const (
	NumberTO1 = "TO-1"
	NumberTO2 = "TO-2"
	NumberTO3 = "TO-3"
)

var (
	ErrReportEquipment = errors.New("report must reference exactly one unit, kalmar or phasar")
	ErrReportNumberTO  = errors.New("number_to must be one of TO-1, TO-2, TO-3")
)

// Report records one maintenance check (TO) performed on a unit.
// Exactly one of KalmarID and PhasarID is set; the pair
// (unit, report_date, number_to) is unique per equipment kind.
type Report struct {
	ID       string  `json:"id" gorm:"primaryKey;size:32;check:chk_report_equipment_xor,(kalmar_id IS NULL) <> (phasar_id IS NULL)"`
	KalmarID *string `json:"kalmar_id,omitempty" gorm:"size:32;uniqueIndex:uniq_kalmar_report,priority:1"`
	PhasarID *string `json:"phasar_id,omitempty" gorm:"size:32;uniqueIndex:uniq_phasar_report,priority:1"`

	ReportDate time.Time `json:"report_date" gorm:"not null;uniqueIndex:uniq_kalmar_report,priority:2;uniqueIndex:uniq_phasar_report,priority:2"`
	NumberTO   string    `json:"number_to" gorm:"size:10;not null;uniqueIndex:uniq_kalmar_report,priority:3;uniqueIndex:uniq_phasar_report,priority:3"`

	// Stored artifact keys, filled in as files are uploaded.
	JSONFileKey     string `json:"json_file_key,omitempty" gorm:"size:512"`
	PDFFileKey      string `json:"pdf_file_key,omitempty" gorm:"size:512"`
	BeforeTOFileKey string `json:"before_to_file_key,omitempty" gorm:"size:512"`
	AfterTOFileKey  string `json:"after_to_file_key,omitempty" gorm:"size:512"`

	CreatedByID *string   `json:"created_by_id,omitempty" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Kalmar    *Kalmar32 `json:"kalmar,omitempty" gorm:"foreignKey:KalmarID"`
	Phasar    *Phasar32 `json:"phasar,omitempty" gorm:"foreignKey:PhasarID"`
	CreatedBy *User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

func (Report) TableName() string {
	return "reports"
}

// Validate enforces the one-unit rule and the TO level set.
func (r *Report) Validate() error {
	if (r.KalmarID == nil) == (r.PhasarID == nil) {
		return ErrReportEquipment
	}
	switch r.NumberTO {
	case NumberTO1, NumberTO2, NumberTO3:
	default:
		return ErrReportNumberTO
	}
	return nil
}

// EquipmentType returns the kind of unit the report belongs to.
func (r *Report) EquipmentType() string {
	if r.KalmarID != nil {
		return EquipmentTypeKalmar32
	}
	return EquipmentTypePhasar32
}
