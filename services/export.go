package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"

	"github.com/gosimple/slug"
)

// Uploader puts a blob in object storage and returns where it landed.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type ExportService struct {
	Repo     repository.Repository
	Uploader Uploader
	Clock    Clock
}

func NewExportService(repo repository.Repository, uploader Uploader, clock Clock) *ExportService {
	return &ExportService{Repo: repo, Uploader: uploader, Clock: clockOrReal(clock)}
}

// ProgressSnapshot is the exported document.
type ProgressSnapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	User       models.User    `json:"user"`
	Habits     []models.Habit `json:"habits"`
}

type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ExportKey builds exports/<userID>/<slug(username)>-<timestamp>.json.
func ExportKey(u *models.User, at time.Time) string {
	name := slug.Make(u.Username)
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("exports/%s/%s-%s.json", u.ID, name, at.UTC().Format("20060102-150405"))
}

// Export uploads the user's profile and every habit they own as one JSON document.
func (s *ExportService) Export(ctx context.Context, userID string) (*ExportResult, error) {
	u, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	habits, err := s.Repo.FindHabits(ctx, repository.HabitFilter{UserID: userID})
	if err != nil {
		return nil, internalError("failed to load habits", err)
	}

	now := s.Clock.Now()
	body, err := json.MarshalIndent(ProgressSnapshot{ExportedAt: now, User: *u, Habits: habits}, "", "  ")
	if err != nil {
		return nil, internalError("failed to encode export", err)
	}

	key := ExportKey(u, now)
	url, err := s.Uploader.Upload(ctx, key, body, "application/json")
	if err != nil {
		return nil, internalError("failed to upload export", err)
	}

	logger.Info("[EXPORT] progress exported", "user_id", userID, "key", key, "bytes", len(body))
	return &ExportResult{Key: key, URL: url}, nil
}
