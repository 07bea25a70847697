package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type ReviewItem struct {
	TopicID        uuid.UUID `json:"topic_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	LatestScore    float64   `json:"latest_score"`
	AvgScore       float64   `json:"avg_score"`
	AttemptsCount  int       `json:"attempts_count"`
	Mastered       bool      `json:"mastered"`
	NextReviewDate time.Time `json:"next_review_date"`
	Overdue        bool      `json:"overdue"`
}

type SweepAllResult struct {
	Owners int
	Topics int
}

type ReviewService interface {
	// Schedule lists the owner's review records, soonest first.
	Schedule(ctx context.Context, ownerID uuid.UUID) ([]ReviewItem, error)
	// Sweep resets the owner's overdue topics. A non-empty email gets a summary message.
	Sweep(ctx context.Context, ownerID uuid.UUID, email string) (scheduler.SweepOutput, error)
	SweepAll(ctx context.Context) (SweepAllResult, error)
	Predict(latest, avg, attempts, days float64) int
}

type reviewService struct {
	log       *logger.Logger
	topics    repos.TopicRepo
	attempts  repos.AttemptRepo
	reviews   repos.ReviewFeatureRepo
	predictor scheduler.Predictor
	notify    Notifier
	now       func() time.Time
}

func NewReviewService(
	baseLog *logger.Logger,
	topics repos.TopicRepo,
	attempts repos.AttemptRepo,
	reviews repos.ReviewFeatureRepo,
	predictor scheduler.Predictor,
	notify Notifier,
) ReviewService {
	return &reviewService{
		log:       baseLog.With("service", "ReviewService"),
		topics:    topics,
		attempts:  attempts,
		reviews:   reviews,
		predictor: predictor,
		notify:    notify,
		now:       time.Now,
	}
}

func (s *reviewService) Schedule(ctx context.Context, ownerID uuid.UUID) ([]ReviewItem, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.reviews.ListByOwner(dbc, ownerID)
	if err != nil {
		s.log.Error("list review features failed", "owner_id", ownerID, "error", err)
		return nil, apierr.Internal(err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			ids = append(ids, r.TopicID)
		}
	}
	titles := map[uuid.UUID]string{}
	statuses := map[uuid.UUID]string{}
	if len(ids) > 0 {
		topics, err := s.topics.GetByIDs(dbc, ids)
		if err != nil {
			s.log.Error("load topics failed", "owner_id", ownerID, "error", err)
			return nil, apierr.Internal(err)
		}
		for _, t := range topics {
			if t != nil && t.OwnerID == ownerID {
				titles[t.ID] = t.Title
				statuses[t.ID] = t.Status
			}
		}
	}

	today := scheduler.Today(s.now())
	out := make([]ReviewItem, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		if _, ok := titles[r.TopicID]; !ok {
			continue
		}
		out = append(out, ReviewItem{
			TopicID:        r.TopicID,
			Title:          titles[r.TopicID],
			Status:         statuses[r.TopicID],
			LatestScore:    r.LatestScore,
			AvgScore:       r.AvgScore,
			AttemptsCount:  r.AttemptsCount,
			Mastered:       r.Mastered,
			NextReviewDate: r.NextReviewDate,
			Overdue:        r.NextReviewDate.Before(today),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextReviewDate.Before(out[j].NextReviewDate)
	})
	return out, nil
}

func (s *reviewService) Sweep(ctx context.Context, ownerID uuid.UUID, email string) (scheduler.SweepOutput, error) {
	if ownerID == uuid.Nil {
		return scheduler.SweepOutput{}, apierr.BadRequest(fmt.Errorf("missing owner"))
	}
	out, err := scheduler.Sweep(ctx, scheduler.SweepDeps{
		Log:      s.log,
		Topics:   s.topics,
		Attempts: s.attempts,
		Reviews:  s.reviews,
	}, scheduler.SweepInput{OwnerID: ownerID, Now: s.now()})
	if err != nil {
		s.log.Error("overdue sweep failed", "owner_id", ownerID, "error", err)
		return out, apierr.Internal(err)
	}
	if email != "" && len(out.ResetTopicIDs) > 0 && s.notify != nil {
		titles := map[uuid.UUID]string{}
		if topics, err := s.topics.GetByIDs(dbctx.Context{Ctx: ctx}, out.ResetTopicIDs); err == nil {
			for _, t := range topics {
				titles[t.ID] = t.Title
			}
		}
		subject, body := dueTopicsEmail(titles, out.ResetTopicIDs)
		s.notify.SendAsync(email, subject, body)
	}
	return out, nil
}

// SweepAll runs the sweep for every owner holding an overdue record. One owner failing does not
// stop the others.
func (s *reviewService) SweepAll(ctx context.Context) (SweepAllResult, error) {
	res := SweepAllResult{}
	today := scheduler.Today(s.now())
	owners, err := s.reviews.ListOwnersWithOverdue(dbctx.Context{Ctx: ctx}, today)
	if err != nil {
		return res, fmt.Errorf("list owners with overdue reviews: %w", err)
	}
	var errs []error
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := s.Sweep(ctx, owner, "")
		if err != nil {
			errs = append(errs, fmt.Errorf("owner %s: %w", owner, err))
			continue
		}
		res.Owners++
		res.Topics += len(out.ResetTopicIDs)
	}
	s.log.Info("sweep across owners finished", "owners", res.Owners, "topics", res.Topics, "failures", len(errs))
	return res, errors.Join(errs...)
}

func (s *reviewService) Predict(latest, avg, attempts, days float64) int {
	return s.predictor.PredictNextReviewDays(latest, avg, attempts, days)
}
