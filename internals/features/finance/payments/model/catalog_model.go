package model

import "github.com/google/uuid"

// Proyeksi read-only dari tabel milik service akademik (users, courses).
// Tidak di-migrate di sini.

type StudentRef struct {
	ID       uuid.UUID `gorm:"column:id" json:"id"`
	UserName string    `gorm:"column:user_name" json:"user_name"`
	FullName string    `gorm:"column:full_name" json:"full_name"`
	Level    int       `gorm:"column:level" json:"level"`
}

type CourseDetail struct {
	ID    uuid.UUID `gorm:"column:course_id" json:"course_id"`
	Code  string    `gorm:"column:course_code" json:"course_code"`
	Title string    `gorm:"column:course_title" json:"course_title"`
	Hours int       `gorm:"column:course_hours" json:"course_hours"`
}
