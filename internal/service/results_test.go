package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

func seedResults(results *fakeResults, rows ...*entities.Result) {
	for _, r := range rows {
		_ = results.Create(context.Background(), r)
	}
}

func TestResultsAdminSeesEveryoneWithEmails(t *testing.T) {
	users := newFakeUsers(
		&entities.User{ID: "admin", Email: "admin@example.com", Role: entities.RoleAdmin},
		&entities.User{ID: "u1", Email: "u1@example.com", Role: entities.RoleUser},
		&entities.User{ID: "u2", Role: entities.RoleUser},
	)
	users.errByID["u4"] = errors.New("deadline exceeded")

	results := &fakeResults{}
	seedResults(results,
		&entities.Result{UserID: "u1", TestTitle: "A", Score: 1, Total: 3},
		&entities.Result{UserID: "u2", TestTitle: "B", Score: 2, Total: 2},
		&entities.Result{UserID: "u3", TestTitle: "C", Score: 0, Total: 4},
		&entities.Result{UserID: "u4", TestTitle: "D", Score: 1, Total: 1},
		&entities.Result{UserID: "u1", TestTitle: "E", Score: 0, Total: 0},
	)

	s := NewResultsService(results, users, NewRoleResolver(users), zap.NewNop())
	view, err := s.List(context.Background(), entities.Identity{UserID: "admin"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if view.Role != entities.RoleAdmin || len(view.Rows) != 5 {
		t.Fatalf("unexpected view: role=%s rows=%d", view.Role, len(view.Rows))
	}

	want := []struct {
		email string
		pct   float64
	}{
		{"u1@example.com", 33.33},
		{EmailMissing, 100},
		{EmailUnknownUser, 0},
		{EmailLookupFailed, 100},
		{"u1@example.com", 0},
	}
	for i, row := range view.Rows {
		if row.Email != want[i].email || row.Percentage != want[i].pct {
			t.Fatalf("row %d: got=(%q, %v) want=(%q, %v)", i, row.Email, row.Percentage, want[i].email, want[i].pct)
		}
	}
}

func TestResultsUserSeesOwnOnly(t *testing.T) {
	users := newFakeUsers(&entities.User{ID: "u1", Email: "u1@example.com", Role: entities.RoleUser})
	results := &fakeResults{}
	seedResults(results,
		&entities.Result{UserID: "u1", TestTitle: "A", Score: 1, Total: 2},
		&entities.Result{UserID: "u2", TestTitle: "B", Score: 2, Total: 2},
	)
	s := NewResultsService(results, users, NewRoleResolver(users), zap.NewNop())

	view, err := s.List(context.Background(), entities.Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(view.Rows) != 1 || view.Rows[0].Result.TestTitle != "A" || view.Rows[0].Email != "" {
		t.Fatalf("unexpected rows: %+v", view.Rows)
	}

	points, err := s.Dashboard(context.Background(), entities.Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(points) != 1 || points[0].Label != "A" || points[0].Value != 50 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestMissingRoleRecordIsPlainUser(t *testing.T) {
	users := newFakeUsers()
	roles := NewRoleResolver(users)

	role, err := roles.ResolveRole(context.Background(), "ghost")
	if err != nil || role != entities.RoleUser {
		t.Fatalf("unexpected role: got=%s err=%v", role, err)
	}

	users.errByID["broken"] = errors.New("unavailable")
	if _, err := roles.ResolveRole(context.Background(), "broken"); err == nil {
		t.Fatalf("lookup failures should surface")
	}
}
