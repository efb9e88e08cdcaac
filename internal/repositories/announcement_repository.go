package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"staff_rota_backend/internal/models"

	"github.com/lib/pq"
)

// AnnouncementRepository stores workflow announcements.
type AnnouncementRepository interface {
	Create(executor SQLExecutor, a *models.Announcement) (int64, error)
	ListForUser(userID int64, roleNames []string, limit int) ([]models.Announcement, error)
}

type announcementRepository struct {
	db *sql.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(executor SQLExecutor, a *models.Announcement) (int64, error) {
	query := `INSERT INTO announcements (title, body, category, action_link, user_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	a.CreatedAt = time.Now()
	var id int64
	err := executor.QueryRow(query, a.Title, a.Body, a.Category, a.ActionLink, a.UserID, a.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: creating announcement: %v", ErrDatabaseError, err)
	}
	a.ID = id

	linkQuery := `INSERT INTO announcement_roles (announcement_id, role_id)
	              SELECT $1, r.id FROM roles r WHERE r.name = $2`
	for _, roleName := range a.TargetRoles {
		if _, err := executor.Exec(linkQuery, id, roleName); err != nil {
			return 0, fmt.Errorf("%w: targeting announcement %d at role %s: %v", ErrDatabaseError, id, roleName, err)
		}
	}
	return id, nil
}

// ListForUser returns the newest announcements addressed to the user directly
// or to any of the user's roles.
func (r *announcementRepository) ListForUser(userID int64, roleNames []string, limit int) ([]models.Announcement, error) {
	query := `SELECT DISTINCT a.id, a.title, a.body, a.category, a.action_link, a.user_id, a.created_at
	          FROM announcements a
	          LEFT JOIN announcement_roles ar ON ar.announcement_id = a.id
	          LEFT JOIN roles r ON r.id = ar.role_id
	          WHERE a.user_id = $1 OR r.name = ANY($2)
	          ORDER BY a.created_at DESC
	          LIMIT $3`

	rows, err := r.db.Query(query, userID, pq.Array(roleNames), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying announcements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var a models.Announcement
		var actionLink sql.NullString
		var targetUserID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Category, &actionLink, &targetUserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning announcement: %v", ErrDatabaseError, err)
		}
		if actionLink.Valid {
			a.ActionLink = &actionLink.String
		}
		if targetUserID.Valid {
			a.UserID = &targetUserID.Int64
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating announcements: %v", ErrDatabaseError, err)
	}
	return announcements, nil
}
