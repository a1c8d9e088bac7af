package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// seedFile lists the catalog entities of one organization.
type seedFile struct {
	OrganizationID string        `yaml:"organizationId"`
	Rooms          []seedRoom    `yaml:"rooms"`
	Seasons        []seedSeason  `yaml:"seasons"`
	Routines       []seedRoutine `yaml:"routines"`
	Members        []seedMember  `yaml:"members"`
}

type seedRoom struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type seedSeason struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type seedRoutine struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Style string `yaml:"style"`
	Song  string `yaml:"song"`
}

type seedMember struct {
	ID        string         `yaml:"id"`
	FirstName string         `yaml:"firstName"`
	LastName  string         `yaml:"lastName"`
	Role      scheduler.Role `yaml:"role"`
}

// seed loads a seed file in a single transaction.
func (a *app) seed(ctx context.Context, path string) error {
	var file seedFile
	if err := decodeFile(path, &file); err != nil {
		return err
	}
	if file.OrganizationID == "" {
		return fmt.Errorf("%s: organizationId is required", path)
	}

	now := time.Now().UTC()
	org := file.OrganizationID
	err := a.db.WithinTx(ctx, func(ctx context.Context, store persistence.Store) error {
		for _, r := range file.Rooms {
			if err := store.CreateRoom(ctx, persistence.Room{ID: r.ID, OrganizationID: org, Name: r.Name, CreatedAt: now}); err != nil {
				return fmt.Errorf("room %s: %w", r.ID, err)
			}
		}
		for _, s := range file.Seasons {
			if err := store.CreateSeason(ctx, persistence.Season{ID: s.ID, OrganizationID: org, Name: s.Name, CreatedAt: now}); err != nil {
				return fmt.Errorf("season %s: %w", s.ID, err)
			}
		}
		for _, r := range file.Routines {
			routine := persistence.Routine{
				ID:             r.ID,
				OrganizationID: org,
				Name:           r.Name,
				Type:           r.Type,
				Style:          r.Style,
				Song:           r.Song,
				CreatedAt:      now,
			}
			if err := store.CreateRoutine(ctx, routine); err != nil {
				return fmt.Errorf("routine %s: %w", r.ID, err)
			}
		}
		for _, m := range file.Members {
			member := persistence.Member{
				ID:             m.ID,
				OrganizationID: org,
				FirstName:      m.FirstName,
				LastName:       m.LastName,
				Role:           m.Role,
				CreatedAt:      now,
			}
			if err := store.CreateMember(ctx, member); err != nil {
				return fmt.Errorf("member %s: %w", m.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed %s: %w", path, err)
	}

	a.logger.Info("seed applied",
		"organization_id", org,
		"rooms", len(file.Rooms),
		"seasons", len(file.Seasons),
		"routines", len(file.Routines),
		"members", len(file.Members),
	)
	return nil
}
