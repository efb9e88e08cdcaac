package services

import (
	"fmt"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
	"staff_rota_backend/pkg/utils"
)

// Notifier records workflow announcements. Writes happen inside the caller's
// transaction so a rolled-back transition leaves no announcement behind.
type Notifier interface {
	NotifyRoles(executor repositories.SQLExecutor, roleNames []string, category, title, body string, actionLink *string) error
	NotifyUser(executor repositories.SQLExecutor, userID int64, category, title, body string, actionLink *string) error
}

type notifier struct {
	announcementRepo repositories.AnnouncementRepository
}

// NewNotifier creates a new Notifier over the announcement store.
func NewNotifier(announcementRepo repositories.AnnouncementRepository) Notifier {
	return &notifier{announcementRepo: announcementRepo}
}

func (n *notifier) NotifyRoles(executor repositories.SQLExecutor, roleNames []string, category, title, body string, actionLink *string) error {
	a := &models.Announcement{
		Title:       title,
		Body:        body,
		Category:    category,
		ActionLink:  actionLink,
		TargetRoles: roleNames,
	}
	if _, err := n.announcementRepo.Create(executor, a); err != nil {
		return fmt.Errorf("failed to record announcement: %w", err)
	}
	utils.LogInfo("Announcement recorded", map[string]interface{}{"category": category, "title": title})
	return nil
}

func (n *notifier) NotifyUser(executor repositories.SQLExecutor, userID int64, category, title, body string, actionLink *string) error {
	a := &models.Announcement{
		Title:      title,
		Body:       body,
		Category:   category,
		ActionLink: actionLink,
		UserID:     &userID,
	}
	if _, err := n.announcementRepo.Create(executor, a); err != nil {
		return fmt.Errorf("failed to record announcement: %w", err)
	}
	return nil
}

// AnnouncementService exposes the per-user notification feed.
type AnnouncementService interface {
	ListForUser(userID int64, roleNames []string, limit int) ([]models.Announcement, error)
}

type announcementService struct {
	announcementRepo repositories.AnnouncementRepository
}

// NewAnnouncementService creates a new instance of AnnouncementService.
func NewAnnouncementService(announcementRepo repositories.AnnouncementRepository) AnnouncementService {
	return &announcementService{announcementRepo: announcementRepo}
}

func (s *announcementService) ListForUser(userID int64, roleNames []string, limit int) ([]models.Announcement, error) {
	announcements, err := s.announcementRepo.ListForUser(userID, roleNames, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}
