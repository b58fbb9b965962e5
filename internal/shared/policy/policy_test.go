package policy

import (
	"testing"

	"kudos-admin/internal/shared/model"
)

func TestRank(t *testing.T) {
	tests := []struct {
		role model.UserRole
		want int
	}{
		{model.UserRoleEmployee, 1},
		{model.UserRoleManager, 2},
		{model.UserRoleHR, 3},
		{model.UserRoleAdmin, 4},
		{model.UserRole("intern"), 0},
		{model.UserRole(""), 0},
	}

	for _, tt := range tests {
		if got := Rank(tt.role); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		role     model.UserRole
		required model.UserRole
		want     bool
	}{
		{"equal role", model.UserRoleManager, model.UserRoleManager, true},
		{"higher role", model.UserRoleAdmin, model.UserRoleManager, true},
		{"lower role", model.UserRoleEmployee, model.UserRoleManager, false},
		{"hr meets manager", model.UserRoleHR, model.UserRoleManager, true},
		{"manager fails hr", model.UserRoleManager, model.UserRoleHR, false},
		{"unknown role fails everything", model.UserRole("intern"), model.UserRoleEmployee, false},
		{"unknown requirement passes", model.UserRoleEmployee, model.UserRole("intern"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRole(tt.role, tt.required); got != tt.want {
				t.Errorf("HasRole(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestAnalyticsAccess(t *testing.T) {
	tests := []struct {
		role     model.UserRole
		wantTeam bool
		wantOrg  bool
	}{
		{model.UserRoleEmployee, false, false},
		{model.UserRoleManager, true, false},
		{model.UserRoleHR, true, true},
		{model.UserRoleAdmin, true, true},
		{model.UserRole("intern"), false, false},
	}

	for _, tt := range tests {
		if got := CanAccessTeamAnalytics(tt.role); got != tt.wantTeam {
			t.Errorf("CanAccessTeamAnalytics(%q) = %v, want %v", tt.role, got, tt.wantTeam)
		}
		if got := CanAccessOrganizationAnalytics(tt.role); got != tt.wantOrg {
			t.Errorf("CanAccessOrganizationAnalytics(%q) = %v, want %v", tt.role, got, tt.wantOrg)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestIsReadable(t *testing.T) {
	tests := []struct {
		name     string
		rec      *model.Recognition
		viewerID string
		want     bool
	}{
		{
			name:     "public readable by anyone",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob", Visibility: model.VisibilityPublic},
			viewerID: "carol",
			want:     true,
		},
		{
			name:     "private readable by recipient",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob", Visibility: model.VisibilityPrivate},
			viewerID: "bob",
			want:     true,
		},
		{
			name:     "private readable by sender",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob", Visibility: model.VisibilityPrivate},
			viewerID: "alice",
			want:     true,
		},
		{
			name:     "private hidden from third party",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob", Visibility: model.VisibilityPrivate},
			viewerID: "carol",
			want:     false,
		},
		{
			name:     "anonymous readable by recipient",
			rec:      &model.Recognition{SenderID: nil, RecipientID: "bob", Visibility: model.VisibilityAnonymous},
			viewerID: "bob",
			want:     true,
		},
		{
			name:     "anonymous hidden from original sender",
			rec:      &model.Recognition{SenderID: nil, RecipientID: "bob", Visibility: model.VisibilityAnonymous},
			viewerID: "alice",
			want:     false,
		},
		{
			name:     "role does not grant read access",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob", Visibility: model.VisibilityPrivate},
			viewerID: "admin-user",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadable(tt.rec, tt.viewerID); got != tt.want {
				t.Errorf("IsReadable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name     string
		rec      *model.Recognition
		viewerID string
		want     bool
	}{
		{
			name:     "sender can mutate",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob"},
			viewerID: "alice",
			want:     true,
		},
		{
			name:     "recipient cannot mutate",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob"},
			viewerID: "bob",
			want:     false,
		},
		{
			name:     "anonymous cannot be mutated by anyone",
			rec:      &model.Recognition{SenderID: nil, RecipientID: "bob"},
			viewerID: "alice",
			want:     false,
		},
		{
			name:     "third party cannot mutate",
			rec:      &model.Recognition{SenderID: strPtr("alice"), RecipientID: "bob"},
			viewerID: "carol",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.rec, tt.viewerID); got != tt.want {
				t.Errorf("CanMutate = %v, want %v", got, tt.want)
			}
		})
	}
}
