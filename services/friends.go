package services

import (
	"context"
	"strings"
	"time"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"
)

type FriendAction string

const (
	FriendAccept FriendAction = "accept"
	FriendReject FriendAction = "reject"
)

type FriendService struct {
	Repo  repository.Repository
	Clock Clock
}

func NewFriendService(repo repository.Repository, clock Clock) *FriendService {
	return &FriendService{Repo: repo, Clock: clockOrReal(clock)}
}

// FriendStats is a friend with the numbers shown on the friends screen.
type FriendStats struct {
	UserSummary
	PlatformXP       int64 `json:"platform_xp"`
	HellWeekActive   bool  `json:"hell_week_active"`
	HabitCount       int   `json:"habit_count"`
	TotalCompletions int   `json:"total_completions"`
}

// IncomingRequest is a queued friend request with the sender resolved.
type IncomingRequest struct {
	From      UserSummary                `json:"from"`
	Status    models.FriendRequestStatus `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
}

// SendRequest queues a pending request from senderID in the queue of the user owning friendCode.
func (s *FriendService) SendRequest(ctx context.Context, senderID, friendCode string) (*models.User, error) {
	code := strings.ToUpper(strings.TrimSpace(friendCode))
	if code == "" {
		return nil, validationError("friend_code is required")
	}

	target, err := s.Repo.FindUserByFriendCode(ctx, code)
	if err != nil {
		return nil, lookupError("user with that friend code", err)
	}
	if target.ID == senderID {
		return nil, conflictError("you cannot send a friend request to yourself")
	}
	if target.IsFriendsWith(senderID) {
		return nil, conflictError("you are already friends")
	}
	if target.HasPendingRequestFrom(senderID) {
		return nil, conflictError("friend request already sent")
	}
	if _, err := s.Repo.FindUserByID(ctx, senderID); err != nil {
		return nil, lookupError("user", err)
	}

	target.FriendRequests = append(target.FriendRequests, models.FriendRequest{
		From:      senderID,
		Status:    models.FriendRequestPending,
		Timestamp: s.Clock.Now(),
	})
	if err := s.Repo.SaveUser(ctx, target); err != nil {
		return nil, internalError("failed to save friend request", err)
	}

	logger.Info("[FRIENDS] request sent", "from", senderID, "to", target.ID)
	return target, nil
}

// Resolve removes requesterID's request from userID's queue; accept also adds the
// edge on both sides. Accepting again once already friends is a no-op.
func (s *FriendService) Resolve(ctx context.Context, userID, requesterID string, action FriendAction) (*models.User, error) {
	if action != FriendAccept && action != FriendReject {
		return nil, validationError("action must be accept or reject")
	}

	var result *models.User
	err := s.Repo.Transaction(ctx, func(repo repository.Repository) error {
		u, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return lookupError("user", err)
		}
		removed := u.RemoveRequestsFrom(requesterID)
		if removed == 0 {
			if action == FriendAccept && u.IsFriendsWith(requesterID) {
				result = u
				return nil
			}
			return notFoundError("friend request not found")
		}

		if action == FriendReject {
			if err := repo.SaveUser(ctx, u); err != nil {
				return internalError("failed to save user", err)
			}
			result = u
			return nil
		}

		requester, err := repo.FindUserByID(ctx, requesterID)
		if err != nil {
			return lookupError("requesting user", err)
		}
		u.AddFriend(requester.ID)
		if requester.AddFriend(u.ID) {
			// the requester may have a crossed request from u queued; it is moot now
			requester.RemoveRequestsFrom(u.ID)
			if err := repo.SaveUser(ctx, requester); err != nil {
				return internalError("failed to save user", err)
			}
		}
		if err := repo.SaveUser(ctx, u); err != nil {
			return internalError("failed to save user", err)
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[FRIENDS] request resolved", "user_id", userID, "requester", requesterID, "action", action)
	return result, nil
}

// ListFriends returns each friend with their progression and habit stats.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]FriendStats, error) {
	u, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	friends, err := s.Repo.FindUsersByIDs(ctx, u.Friends)
	if err != nil {
		return nil, internalError("failed to load friends", err)
	}

	out := make([]FriendStats, 0, len(friends))
	for i := range friends {
		f := &friends[i]
		habits, err := s.Repo.FindHabits(ctx, repository.HabitFilter{UserID: f.ID, VisibleOnly: true})
		if err != nil {
			return nil, internalError("failed to load friend habits", err)
		}
		stats := FriendStats{
			UserSummary:    summarize(f),
			PlatformXP:     f.PlatformXP,
			HellWeekActive: f.HellWeek.IsActive,
			HabitCount:     len(habits),
		}
		for _, h := range habits {
			stats.TotalCompletions += len(h.CompletedDates)
		}
		out = append(out, stats)
	}
	return out, nil
}

// ListRequests returns the caller's queue with each sender resolved.
func (s *FriendService) ListRequests(ctx context.Context, userID string) ([]IncomingRequest, error) {
	u, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	ids := make([]string, 0, len(u.FriendRequests))
	for _, r := range u.FriendRequests {
		ids = append(ids, r.From)
	}
	senders, err := s.Repo.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, internalError("failed to load requesting users", err)
	}
	byID := make(map[string]*models.User, len(senders))
	for i := range senders {
		byID[senders[i].ID] = &senders[i]
	}

	out := make([]IncomingRequest, 0, len(u.FriendRequests))
	for _, r := range u.FriendRequests {
		sender, ok := byID[r.From]
		if !ok {
			continue
		}
		out = append(out, IncomingRequest{
			From:      summarize(sender),
			Status:    r.Status,
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}
