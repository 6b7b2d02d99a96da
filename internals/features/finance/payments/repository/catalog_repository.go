package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/finance/payments/model"
)

// CatalogRepository membaca tabel milik service akademik (read-only):
//   users(id, user_name, full_name, role, level)
//   courses(course_id, course_code, course_title, course_hours, course_deleted_at)
//   course_enrollments(course_enrollment_student_id, course_enrollment_course_id, course_enrollment_created_at)
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) FindStudentByID(ctx context.Context, id uuid.UUID) (*model.StudentRef, error) {
	var s model.StudentRef
	res := r.DB.WithContext(ctx).Raw(`
		SELECT id, user_name, COALESCE(full_name, '') AS full_name, COALESCE(level, 0) AS level
		FROM users
		WHERE id = ? AND role = ?
		LIMIT 1
	`, id, constants.RoleStudent).Scan(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

// FindStudentByName: exact match, case-insensitive.
func (r *CatalogRepository) FindStudentByName(ctx context.Context, name string) (*model.StudentRef, error) {
	var s model.StudentRef
	res := r.DB.WithContext(ctx).Raw(`
		SELECT id, user_name, COALESCE(full_name, '') AS full_name, COALESCE(level, 0) AS level
		FROM users
		WHERE LOWER(user_name) = ? AND role = ?
		LIMIT 1
	`, strings.ToLower(strings.TrimSpace(name)), constants.RoleStudent).Scan(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

// ListEnrolledCourses: urut sesuai waktu enroll (urutan ini yang masuk snapshot).
func (r *CatalogRepository) ListEnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]model.CourseDetail, error) {
	var out []model.CourseDetail
	err := r.DB.WithContext(ctx).Raw(`
		SELECT c.course_id, c.course_code, c.course_title, c.course_hours
		FROM course_enrollments e
		JOIN courses c ON c.course_id = e.course_enrollment_course_id
		WHERE e.course_enrollment_student_id = ?
		  AND c.course_deleted_at IS NULL
		ORDER BY e.course_enrollment_created_at ASC, c.course_id ASC
	`, studentID).Scan(&out).Error
	return out, err
}

// FindCoursesByIDs: dipakai admin lookup untuk expand snapshot (termasuk course yang sudah dihapus).
func (r *CatalogRepository) FindCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CourseDetail, error) {
	if len(ids) == 0 {
		return []model.CourseDetail{}, nil
	}
	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}

	var out []model.CourseDetail
	err := r.DB.WithContext(ctx).Raw(`
		SELECT course_id, course_code, course_title, course_hours
		FROM courses
		WHERE course_id = ANY(?::uuid[])
	`, pq.Array(strIDs)).Scan(&out).Error
	return out, err
}
