package main

import (
	"context"

	"github.com/example/studio-scheduler/internal/application"
)

func (a *app) runEvent(ctx context.Context, args []string) error {
	fs := a.flags("event")
	org := fs.String("org", "", "organization ID")
	id := fs.String("id", "", "event ID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("event", map[string]string{"org": *org, "id": *id}); err != nil {
		return err
	}
	event, err := a.blocks.GetEvent(ctx, *org, *id)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, event)
}

func (a *app) runCreateBlock(ctx context.Context, args []string) error {
	fs := a.flags("create-block")
	org := fs.String("org", "", "organization ID")
	file := fs.String("file", "", "block event payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("create-block", map[string]string{"org": *org, "file": *file}); err != nil {
		return err
	}
	var input application.BlockEventInput
	if err := decodeFile(*file, &input); err != nil {
		return err
	}
	event, err := a.blocks.CreateBlockEvent(ctx, application.CreateBlockEventParams{OrganizationID: *org, Input: input})
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, event)
}

func (a *app) runUpdateBlock(ctx context.Context, args []string) error {
	fs := a.flags("update-block")
	org := fs.String("org", "", "organization ID")
	id := fs.String("id", "", "event ID")
	file := fs.String("file", "", "block event payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("update-block", map[string]string{"org": *org, "id": *id, "file": *file}); err != nil {
		return err
	}
	var input application.BlockEventInput
	if err := decodeFile(*file, &input); err != nil {
		return err
	}
	event, err := a.blocks.UpdateBlockEvent(ctx, application.UpdateBlockEventParams{
		OrganizationID: *org,
		EventID:        *id,
		Input:          input,
	})
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, event)
}

func (a *app) runDeleteBlock(ctx context.Context, args []string) error {
	fs := a.flags("delete-block")
	org := fs.String("org", "", "organization ID")
	id := fs.String("id", "", "event ID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("delete-block", map[string]string{"org": *org, "id": *id}); err != nil {
		return err
	}
	if err := a.blocks.DeleteBlockEvent(ctx, *org, *id); err != nil {
		return err
	}
	return writeJSON(a.stdout, map[string]string{"deleted": *id})
}
