package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// Placeholders shown when an email cannot be resolved.
const (
	EmailMissing      = "No Email"
	EmailUnknownUser  = "Unknown User"
	EmailLookupFailed = "Error Fetching Email"
)

const maxConcurrentLookups = 8

// ResultRow is one rendered result.
type ResultRow struct {
	Result     *entities.Result
	Percentage float64
	Email      string // populated for the elevated view only
}

// ResultsView is the results page of one caller.
type ResultsView struct {
	Role entities.Role
	Rows []ResultRow
}

// DashboardPoint is one labelled value of the aggregate dashboard.
type DashboardPoint struct {
	ResultID string
	Label    string
	Value    float64
}

// ResultsService serves the results page and the aggregate dashboard.
type ResultsService struct {
	results ResultRepository
	users   UserLookup
	roles   *RoleResolver
	logger  *zap.Logger
}

func NewResultsService(results ResultRepository, users UserLookup, roles *RoleResolver, logger *zap.Logger) *ResultsService {
	return &ResultsService{results: results, users: users, roles: roles, logger: logger}
}

// List returns every result for an admin, with emails resolved best-effort,
// and the caller's own results otherwise.
func (s *ResultsService) List(ctx context.Context, caller entities.Identity) (*ResultsView, error) {
	role, err := s.roles.ResolveRole(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	var results []*entities.Result
	if role.IsAdmin() {
		results, err = s.results.ListAll(ctx)
	} else {
		results, err = s.results.ListByUser(ctx, caller.UserID)
	}
	if err != nil {
		return nil, err
	}

	view := &ResultsView{Role: role, Rows: make([]ResultRow, 0, len(results))}

	var emails map[string]string
	if role.IsAdmin() {
		emails = s.resolveEmails(ctx, results)
	}

	for _, res := range results {
		view.Rows = append(view.Rows, ResultRow{
			Result:     res,
			Percentage: res.Percentage(),
			Email:      emails[res.UserID],
		})
	}

	return view, nil
}

// Dashboard projects the caller's own results into percentage points.
func (s *ResultsService) Dashboard(ctx context.Context, caller entities.Identity) ([]DashboardPoint, error) {
	results, err := s.results.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	points := make([]DashboardPoint, 0, len(results))
	for _, res := range results {
		points = append(points, DashboardPoint{
			ResultID: res.ID,
			Label:    res.TestTitle,
			Value:    res.Percentage(),
		})
	}
	return points, nil
}

// resolveEmails looks up every distinct user id concurrently. A failed lookup
// only affects its own entry.
func (s *ResultsService) resolveEmails(ctx context.Context, results []*entities.Result) map[string]string {
	ids := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		if _, ok := seen[res.UserID]; ok {
			continue
		}
		seen[res.UserID] = struct{}{}
		ids = append(ids, res.UserID)
	}

	var (
		mu     sync.Mutex
		emails = make(map[string]string, len(ids))
		g      errgroup.Group
	)
	g.SetLimit(maxConcurrentLookups)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			email := s.lookupEmail(ctx, id)
			mu.Lock()
			emails[id] = email
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return emails
}

func (s *ResultsService) lookupEmail(ctx context.Context, userID string) string {
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil && user.Email == "":
		return EmailMissing
	case err == nil:
		return user.Email
	case errors.Is(err, ErrUserNotFound):
		return EmailUnknownUser
	default:
		s.logger.Warn("email lookup failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return EmailLookupFailed
	}
}
