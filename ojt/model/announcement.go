package model

import "time"

// Announcement is posted either to every student (IsForAll) or to one
// department.
type Announcement struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Title      string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	Department string    `gorm:"column:department;type:varchar(100);index" json:"department"`
	PostedBy   string    `gorm:"column:posted_by;type:varchar(36);not null" json:"postedBy"`
	IsForAll   bool      `gorm:"column:is_for_all;not null;default:false" json:"isForAll"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true;index" json:"isActive"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// AnnouncementFilter narrows a listing. A non-nil Audience keeps what students
// of that department see: their department's posts and those for everyone.
type AnnouncementFilter struct {
	Audience *string
	Active   *bool
}

// AnnouncementPatch carries the fields an edit changes. Nil leaves a field alone.
type AnnouncementPatch struct {
	Title      *string
	Content    *string
	Department *string
	IsForAll   *bool
	IsActive   *bool
}

// Visible reports whether the announcement reaches students of department.
func (a *Announcement) Visible(department string) bool {
	return a.IsForAll || (department != "" && a.Department == department)
}
