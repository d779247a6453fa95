package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/repos"
)

func newResourceService(t *testing.T) (ResourceService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()
	svc, err := NewResourceService(db, log, repos.NewResourceSearchRepo(db, log))
	if err != nil {
		t.Fatalf("init resource service: %v", err)
	}
	return svc, db
}

func TestGetResources_LocationRequired(t *testing.T) {
	svc, _ := newResourceService(t)
	_, err := svc.GetResources(context.Background(), "user-1", ResourceQuery{})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Location parameter is required" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestGetResources_AddressTemplating(t *testing.T) {
	svc, _ := newResourceService(t)
	resources, err := svc.GetResources(context.Background(), "user-1", ResourceQuery{Location: "Accra"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) == 0 {
		t.Fatalf("expected resources")
	}
	for _, r := range resources {
		if strings.Contains(r.Address, "{location}") {
			t.Fatalf("address not templated: %q", r.Address)
		}
	}
	if !strings.Contains(resources[0].Address, "Accra") {
		t.Fatalf("expected location substituted, got %q", resources[0].Address)
	}
}

func TestGetResources_Filters(t *testing.T) {
	svc, _ := newResourceService(t)
	ctx := context.Background()

	byType, err := svc.GetResources(ctx, "user-1", ResourceQuery{Location: "Accra", Type: "crisis"})
	if err != nil {
		t.Fatalf("type filter: %v", err)
	}
	for _, r := range byType {
		if r.Type != "crisis" {
			t.Fatalf("type filter leaked %q", r.Type)
		}
	}
	if len(byType) == 0 {
		t.Fatalf("expected at least one crisis resource")
	}

	byKeyword, err := svc.GetResources(ctx, "user-1", ResourceQuery{Location: "Accra", Keyword: "veteran"})
	if err != nil {
		t.Fatalf("keyword filter: %v", err)
	}
	if len(byKeyword) != 1 || !strings.Contains(strings.ToLower(byKeyword[0].Name), "veteran") {
		t.Fatalf("unexpected keyword results: %+v", byKeyword)
	}

	nearby, err := svc.GetResources(ctx, "user-1", ResourceQuery{Location: "Accra", MaxDistance: 2})
	if err != nil {
		t.Fatalf("distance filter: %v", err)
	}
	for _, r := range nearby {
		if r.Distance > 2 {
			t.Fatalf("distance filter leaked %v", r.Distance)
		}
	}
}

func TestGetResources_LogsSearch(t *testing.T) {
	svc, db := newResourceService(t)
	if _, err := svc.GetResources(context.Background(), "user-1", ResourceQuery{Location: "Accra", Type: "crisis"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	searches, err := repos.NewResourceSearchRepo(db, testLogger()).GetByUser(context.Background(), nil, "user-1", 10)
	if err != nil {
		t.Fatalf("load searches: %v", err)
	}
	if len(searches) != 1 || searches[0].Location != "Accra" || searches[0].Type != "crisis" {
		t.Fatalf("search not logged: %+v", searches)
	}
}

func TestGetResourceDetails(t *testing.T) {
	svc, _ := newResourceService(t)
	ctx := context.Background()

	resource, err := svc.GetResourceDetails(ctx, "user-1", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resource.Address, "Sample City") {
		t.Fatalf("expected placeholder city, got %q", resource.Address)
	}
	if resource.DetailedDescription == "" || resource.Cost == "" {
		t.Fatalf("expected detail fields populated: %+v", resource)
	}

	if _, err := svc.GetResourceDetails(ctx, "user-1", "999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
