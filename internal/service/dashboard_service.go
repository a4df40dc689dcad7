package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
)

const dashboardRecentLimit = 5

// DashboardService produces the aggregated statistics shown on the teacher dashboard.
type DashboardService interface {
	DashboardInvalidator
	GetDashboard(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	exams       repository.ExamRepository
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	results     repository.GradingRepository
	activity    ActivityService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator. cache may be nil.
func NewDashboardService(exams repository.ExamRepository, students repository.StudentRepository, submissions repository.SubmissionRepository, results repository.GradingRepository, activity ActivityService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		exams:       exams,
		students:    students,
		submissions: submissions,
		results:     results,
		activity:    activity,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func dashboardCacheKey(ownerID uint) string {
	return fmt.Sprintf("dashboard:teacher:%d", ownerID)
}

func (s *dashboardService) GetDashboard(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(actor.ID)
	if s.cache != nil && s.cacheTTL > 0 {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", actor.ID).Msg("dashboard cache hit")
				response.Cached = true
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	response, err := s.build(ctx, actor)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard so the next read recomputes it.
func (s *dashboardService) Invalidate(ctx context.Context, ownerID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(ownerID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", ownerID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) build(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	totalExams, err := s.exams.CountByOwner(ctx, actor.ID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	totalStudents, err := s.students.CountByOwner(ctx, actor.ID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	counts, err := s.submissions.CountByStatusForOwner(ctx, actor.ID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	average, err := s.results.AveragePercentageForOwner(ctx, actor.ID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	recent, err := s.exams.ListByOwner(ctx, actor.ID, dashboardRecentLimit)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		TotalExams:        totalExams,
		TotalStudents:     totalStudents,
		TotalSubmissions:  counts.Total(),
		PendingGrading:    counts[models.SubmissionStatusSubmitted],
		Graded:            counts[models.SubmissionStatusGraded],
		AveragePercentage: average,
		RecentExams:       make([]dto.DashboardExam, 0, len(recent)),
		RecentActivity:    []dto.ActivityResponse{},
		GeneratedAt:       s.now().UTC(),
	}
	for _, exam := range recent {
		response.RecentExams = append(response.RecentExams, dto.NewDashboardExam(exam))
	}

	if s.activity != nil {
		activity, err := s.activity.Recent(ctx, actor, dashboardRecentLimit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to load recent activity")
		} else {
			response.RecentActivity = activity
		}
	}

	return response, nil
}
