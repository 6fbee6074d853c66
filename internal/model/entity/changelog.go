package entity

import "time"

// ChangeLog stores one field-level change of a tracked record. A single
// update that touches several columns produces several rows sharing the
// same record id and timestamp.
type ChangeLog struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TableName_  string    `json:"table_name" gorm:"column:table_name;size:100;not null;index:idx_changelog_record,priority:1"`
	RecordID    string    `json:"record_id" gorm:"size:64;not null;index:idx_changelog_record,priority:2"`
	ColumnName  string    `json:"column_name" gorm:"size:100;not null"`
	OldValue    string    `json:"old_value" gorm:"type:text"`
	NewValue    string    `json:"new_value" gorm:"type:text"`
	ChangedByID *string   `json:"changed_by_id,omitempty" gorm:"size:32"`
	ChangedOn   time.Time `json:"changed_on" gorm:"not null;index:,sort:desc"`

	// Relations
	ChangedBy *User `json:"changed_by,omitempty" gorm:"foreignKey:ChangedByID"`
}

func (ChangeLog) TableName() string {
	return "change_logs"
}
