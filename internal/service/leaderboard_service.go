package service

import (
	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/repository"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
)

type LeaderboardService struct {
	userRepo *repository.UserRepository
}

func NewLeaderboardService(userRepo *repository.UserRepository) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo}
}

// List 学生排行，sortBy 为 points 或 streak
func (s *LeaderboardService) List(currentUserID int64, sortBy string, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	users, err := s.userRepo.ListLeaderboard(sortBy, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		badges := []string(u.Badges)
		if badges == nil {
			badges = []string{}
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank:          i + 1,
			Name:          u.Name,
			Points:        u.Points,
			Streak:        u.Streak,
			Badges:        badges,
			IsCurrentUser: u.ID == currentUserID,
		})
	}
	return entries, nil
}
