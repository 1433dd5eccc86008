// Package portfolio assembles the public portfolio data set and serves it
// through the static cache.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// MaxFeatured bounds the featured experiences, and separately the featured
// content entities, included in a snapshot.
const MaxFeatured = 6

// Source is the read side of the record store used to build snapshots.
type Source interface {
	GetPersonalInfo(ctx context.Context) (*types.PersonalInfo, error)
	ListPublicExperiences(ctx context.Context) ([]types.ExperienceRecord, error)
	ListSkills(ctx context.Context, visibleOnly bool) ([]types.Skill, error)
	ListSections(ctx context.Context, filter types.SectionFilter) ([]types.WebsiteSection, error)
	ListPublicContentEntities(ctx context.Context) ([]types.ContentEntity, error)
}

// Stats counts experiences by headline category.
type Stats struct {
	Experience     int `json:"experience"`
	Projects       int `json:"projects"`
	Education      int `json:"education"`
	Certifications int `json:"certifications"`
}

// Snapshot is the complete public data set.
type Snapshot struct {
	PersonalInfo          *types.PersonalInfo                         `json:"personalInfo"`
	Experiences           []types.ExperienceRecord                    `json:"experiences"`
	ExperiencesByCategory map[types.Category][]types.ExperienceRecord `json:"experiencesByCategory"`
	Skills                []types.Skill                               `json:"skills"`
	SkillsByCategory      map[string][]types.Skill                    `json:"skillsByCategory"`
	Sections              []types.WebsiteSection                      `json:"sections"`
	Stats                 Stats                                       `json:"stats"`
	Featured              []types.ExperienceRecord                    `json:"featured"`
	Content               []types.ContentEntity                       `json:"content"`
	ContentByType         map[types.EntityType][]types.ContentEntity  `json:"contentByType"`
	FeaturedContent       []types.ContentEntity                       `json:"featuredContent"`
	LastUpdated           time.Time                                   `json:"lastUpdated"`
}

// Build reads the store concurrently and derives the grouped views. A
// missing personal-info row yields a nil PersonalInfo.
func Build(ctx context.Context, src Source, now time.Time) (*Snapshot, error) {
	var (
		info        *types.PersonalInfo
		experiences []types.ExperienceRecord
		skills      []types.Skill
		sections    []types.WebsiteSection
		content     []types.ContentEntity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := src.GetPersonalInfo(gctx)
		if err != nil && !apperrors.IsNotFound(err) {
			return fmt.Errorf("failed to load personal info: %w", err)
		}
		info = p
		return nil
	})
	g.Go(func() error {
		var err error
		if experiences, err = src.ListPublicExperiences(gctx); err != nil {
			return fmt.Errorf("failed to load experiences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if skills, err = src.ListSkills(gctx, true); err != nil {
			return fmt.Errorf("failed to load skills: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sections, err = src.ListSections(gctx, types.SectionFilter{PublishedOnly: true}); err != nil {
			return fmt.Errorf("failed to load website sections: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if content, err = src.ListPublicContentEntities(gctx); err != nil {
			return fmt.Errorf("failed to load content entities: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		PersonalInfo:          info,
		Experiences:           nonNilSlice(experiences),
		ExperiencesByCategory: make(map[types.Category][]types.ExperienceRecord),
		Skills:                nonNilSlice(skills),
		SkillsByCategory:      make(map[string][]types.Skill),
		Sections:              nonNilSlice(sections),
		Featured:              []types.ExperienceRecord{},
		Content:               nonNilSlice(content),
		ContentByType:         make(map[types.EntityType][]types.ContentEntity),
		FeaturedContent:       []types.ContentEntity{},
		LastUpdated:           now.UTC(),
	}

	for _, e := range snap.Experiences {
		snap.ExperiencesByCategory[e.Category] = append(snap.ExperiencesByCategory[e.Category], e)
		if e.IsFeatured && len(snap.Featured) < MaxFeatured {
			snap.Featured = append(snap.Featured, e)
		}
	}
	for _, c := range snap.Content {
		snap.ContentByType[c.EntityType] = append(snap.ContentByType[c.EntityType], c)
		if c.IsFeatured && len(snap.FeaturedContent) < MaxFeatured {
			snap.FeaturedContent = append(snap.FeaturedContent, c)
		}
	}
	for _, s := range snap.Skills {
		category := s.Category
		if category == "" {
			category = types.DefaultSkillCategory
		}
		snap.SkillsByCategory[category] = append(snap.SkillsByCategory[category], s)
	}

	snap.Stats = Stats{
		Experience:     len(snap.ExperiencesByCategory[types.CategoryWork]),
		Projects:       len(snap.ExperiencesByCategory[types.CategoryProject]),
		Education:      len(snap.ExperiencesByCategory[types.CategoryEducation]),
		Certifications: len(snap.ExperiencesByCategory[types.CategoryCertification]),
	}
	return snap, nil
}

// Problems lists integrity issues that make the snapshot unfit to publish.
// An empty result means the snapshot is complete.
func (s *Snapshot) Problems() []string {
	var problems []string
	if s.PersonalInfo == nil {
		problems = append(problems, "personal info is missing")
	} else {
		if s.PersonalInfo.Name == "" {
			problems = append(problems, "personal name is required")
		}
		if s.PersonalInfo.Email == "" {
			problems = append(problems, "personal email is required")
		}
	}
	for i, e := range s.Experiences {
		if e.Title == "" {
			problems = append(problems, fmt.Sprintf("experience %d missing title", i))
		}
	}
	for i, c := range s.Content {
		if c.Title == "" {
			problems = append(problems, fmt.Sprintf("content entity %d missing title", i))
		}
	}
	for i, sk := range s.Skills {
		if sk.Name == "" {
			problems = append(problems, fmt.Sprintf("skill %d missing name", i))
		}
	}
	return problems
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
