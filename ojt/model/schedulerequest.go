package model

import (
	"time"

	"gorm.io/datatypes"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type ScheduleChangeRequest struct {
	ID                   string                          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	StudentID            string                          `gorm:"column:student_id;type:varchar(36);not null;index" json:"studentId"`
	DepartmentID         string                          `gorm:"column:department_id;type:varchar(100);index" json:"departmentId"`
	CurrentShiftType     StudentShiftType                `gorm:"column:current_shift_type;type:varchar(20)" json:"currentShiftType"`
	RequestedShiftType   StudentShiftType                `gorm:"column:requested_shift_type;type:varchar(20)" json:"requestedShiftType"`
	RequestedShiftConfig datatypes.JSONType[ShiftConfig] `gorm:"column:requested_shift_config" json:"requestedShiftConfig"`
	Reason               string                          `gorm:"column:reason;type:text" json:"reason"`
	Status               RequestStatus                   `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	RequestedAt          time.Time                       `gorm:"column:requested_at" json:"requestedAt"`
	ReviewedAt           *time.Time                      `gorm:"column:reviewed_at" json:"reviewedAt"`
	ReviewedBy           *string                         `gorm:"column:reviewed_by;type:varchar(36)" json:"reviewedBy"`
	Comments             *string                         `gorm:"column:comments;type:text" json:"comments"`
}

func (ScheduleChangeRequest) TableName() string {
	return "schedule_change_requests"
}

type ScheduleRequestFilter struct {
	StudentID    string
	DepartmentID string
	Status       RequestStatus
}
