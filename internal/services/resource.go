package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/repos"
	"github.com/esaha/esaha-backend/internal/types"
)

// Resource is one entry in the curated mental health resource directory.
// Address templates may contain {location}, replaced with the caller's
// location at query time.
type Resource struct {
	ID                  string   `yaml:"id" json:"id"`
	Name                string   `yaml:"name" json:"name"`
	Description         string   `yaml:"description" json:"description"`
	Type                string   `yaml:"type" json:"type"`
	Address             string   `yaml:"address" json:"address,omitempty"`
	Phone               string   `yaml:"phone" json:"phone,omitempty"`
	Website             string   `yaml:"website" json:"website,omitempty"`
	Hours               string   `yaml:"hours" json:"hours,omitempty"`
	Distance            float64  `yaml:"distance" json:"distance"`
	DetailedDescription string   `yaml:"detailed_description" json:"detailed_description,omitempty"`
	Eligibility         string   `yaml:"eligibility" json:"eligibility,omitempty"`
	Cost                string   `yaml:"cost" json:"cost,omitempty"`
	Languages           []string `yaml:"languages" json:"languages,omitempty"`
}

type ResourceQuery struct {
	Location    string
	Type        string
	Keyword     string
	MaxDistance float64
}

type ResourceService interface {
	GetResources(ctx context.Context, userID string, query ResourceQuery) ([]Resource, error)
	GetResourceDetails(ctx context.Context, userID, resourceID string) (*Resource, error)
}

type resourceService struct {
	db         *gorm.DB
	log        *logger.Logger
	searchRepo repos.ResourceSearchRepo
	directory  []Resource
}

const defaultResourceDirectory = `
- id: "1"
  name: Community Mental Health Center
  description: Offers counseling, therapy, and support services for various mental health concerns.
  type: counseling
  address: "123 Main St, {location}"
  phone: 555-123-4567
  website: https://example.com/cmhc
  distance: 2.3
  detailed_description: This is a more detailed description of the resource that would include additional information about services offered, eligibility requirements, and other important details.
  eligibility: Open to all residents in the area. No referral needed.
  cost: Sliding scale fees based on income. Insurance accepted.
  languages: [English, Spanish]
- id: "2"
  name: Anxiety & Depression Support Group
  description: Weekly peer support meetings for individuals experiencing anxiety and depression.
  type: support_group
  address: "456 Oak Ave, {location}"
  website: https://example.com/support
  hours: Tuesdays 7-9PM
  distance: 3.1
  detailed_description: This is a more detailed description of the resource that would include additional information about services offered, eligibility requirements, and other important details.
  eligibility: Open to all residents in the area. No referral needed.
  cost: Free of charge.
  languages: [English]
- id: "3"
  name: Crisis Response Center
  description: 24/7 emergency mental health services and crisis intervention.
  type: crisis
  address: "789 Emergency Blvd, {location}"
  phone: 555-911-HELP
  website: https://example.com/crisis
  distance: 5.8
  detailed_description: This is a more detailed description of the resource that would include additional information about services offered, eligibility requirements, and other important details.
  eligibility: Open to all residents in the area. No referral needed.
  cost: Free of charge.
  languages: [English, Spanish]
- id: "4"
  name: Mindfulness Meditation Center
  description: Guided meditation and mindfulness practices for stress management and emotional wellbeing.
  type: wellness
  address: "101 Calm St, {location}"
  website: https://example.com/mindfulness
  hours: Mon-Fri 9AM-8PM, Sat 10AM-2PM
  distance: 1.7
  detailed_description: This is a more detailed description of the resource that would include additional information about services offered, eligibility requirements, and other important details.
  eligibility: Open to all residents in the area. No referral needed.
  cost: Sliding scale fees based on income.
  languages: [English]
- id: "5"
  name: Veteran's Mental Health Services
  description: Specialized mental health support for veterans and military personnel.
  type: counseling
  address: "567 Veterans Blvd, {location}"
  phone: 555-VET-HELP
  website: https://example.com/vets
  distance: 8.2
  detailed_description: This is a more detailed description of the resource that would include additional information about services offered, eligibility requirements, and other important details.
  eligibility: Veterans and active military personnel.
  cost: Covered by veteran benefits. No referral needed.
  languages: [English, Spanish]
`

// NewResourceService loads the directory from RESOURCE_DIRECTORY_PATH when
// set, falling back to the built-in directory.
func NewResourceService(db *gorm.DB, log *logger.Logger, searchRepo repos.ResourceSearchRepo) (ResourceService, error) {
	serviceLog := log.With("service", "ResourceService")

	raw := []byte(defaultResourceDirectory)
	if path := strings.TrimSpace(os.Getenv("RESOURCE_DIRECTORY_PATH")); path != "" {
		fileRaw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read resource directory %s: %w", path, err)
		}
		raw = fileRaw
	}

	var directory []Resource
	if err := yaml.Unmarshal(raw, &directory); err != nil {
		return nil, fmt.Errorf("parse resource directory: %w", err)
	}
	if len(directory) == 0 {
		return nil, fmt.Errorf("resource directory is empty")
	}

	return &resourceService{
		db:         db,
		log:        serviceLog,
		searchRepo: searchRepo,
		directory:  directory,
	}, nil
}

func (rs *resourceService) GetResources(ctx context.Context, userID string, query ResourceQuery) ([]Resource, error) {
	if strings.TrimSpace(query.Location) == "" {
		return nil, NewValidationError("Location parameter is required")
	}
	if query.MaxDistance <= 0 {
		query.MaxDistance = 25
	}

	results := []Resource{}
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))
	for _, r := range rs.directory {
		if query.Type != "" && r.Type != query.Type {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(r.Name), keyword) &&
			!strings.Contains(strings.ToLower(r.Description), keyword) {
			continue
		}
		if r.Distance > query.MaxDistance {
			continue
		}
		r.Address = strings.ReplaceAll(r.Address, "{location}", query.Location)
		results = append(results, r)
	}

	// Search logging is best-effort.
	search := &types.ResourceSearch{
		ID:        uuid.New(),
		UserID:    userID,
		Location:  query.Location,
		Type:      query.Type,
		Keyword:   query.Keyword,
		Timestamp: time.Now().UTC(),
	}
	if _, err := rs.searchRepo.Create(ctx, nil, search); err != nil {
		rs.log.Warn("Failed to log resource search", "error", err)
	}

	return results, nil
}

func (rs *resourceService) GetResourceDetails(ctx context.Context, userID, resourceID string) (*Resource, error) {
	for _, r := range rs.directory {
		if r.ID == resourceID {
			r.Address = strings.ReplaceAll(r.Address, "{location}", "Sample City")
			return &r, nil
		}
	}
	return nil, ErrNotFound
}
