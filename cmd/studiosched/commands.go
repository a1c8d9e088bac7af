package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/calendar"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

func require(command string, values map[string]string) error {
	for _, name := range []string{"org", "tz", "class", "id", "file"} {
		if value, ok := values[name]; ok && value == "" {
			return usagef("%s: -%s is required", command, name)
		}
	}
	return nil
}

func (a *app) runMigrate(ctx context.Context, args []string) error {
	fs := a.flags("migrate")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if a.sql == nil {
		a.logger.Info("in-memory store needs no migrations")
		return nil
	}
	if err := a.sql.Migrate(ctx); err != nil {
		return err
	}
	a.logger.Info("migrations applied")
	return nil
}

func (a *app) runSeed(ctx context.Context, args []string) error {
	fs := a.flags("seed")
	file := fs.String("file", "", "seed file (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("seed", map[string]string{"file": *file}); err != nil {
		return err
	}
	return a.seed(ctx, *file)
}

func (a *app) runCheck(ctx context.Context, args []string) error {
	fs := a.flags("check")
	org := fs.String("org", "", "organization ID")
	classID := fs.String("class", "", "class being edited, excluded from the check")
	file := fs.String("file", "", "class payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("check", map[string]string{"org": *org, "file": *file}); err != nil {
		return err
	}
	input, err := readClassInput(*file)
	if err != nil {
		return err
	}

	// Conflicts come back as a *ConflictError and are printed by fail.
	if _, err := a.service.CheckClass(ctx, application.CheckClassParams{
		OrganizationID: *org,
		ClassID:        *classID,
		Input:          input,
	}); err != nil {
		return err
	}
	return writeJSON(a.stdout, map[string]any{"conflicts": []any{}})
}

func (a *app) runCreate(ctx context.Context, args []string) error {
	fs := a.flags("create")
	org := fs.String("org", "", "organization ID")
	tz := fs.String("tz", "", "IANA timezone of the organization")
	file := fs.String("file", "", "class payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("create", map[string]string{"org": *org, "tz": *tz, "file": *file}); err != nil {
		return err
	}
	input, err := readClassInput(*file)
	if err != nil {
		return err
	}

	class, events, err := a.service.CreateClass(ctx, application.CreateClassParams{
		OrganizationID: *org,
		Timezone:       *tz,
		Input:          input,
	})
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, classResult{Class: class, Events: events})
}

func (a *app) runUpdate(ctx context.Context, args []string) error {
	fs := a.flags("update")
	org := fs.String("org", "", "organization ID")
	tz := fs.String("tz", "", "IANA timezone of the organization")
	classID := fs.String("class", "", "class ID")
	file := fs.String("file", "", "class payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("update", map[string]string{"org": *org, "tz": *tz, "class": *classID, "file": *file}); err != nil {
		return err
	}
	input, err := readClassInput(*file)
	if err != nil {
		return err
	}

	class, events, err := a.service.UpdateClass(ctx, application.UpdateClassParams{
		OrganizationID: *org,
		ClassID:        *classID,
		Timezone:       *tz,
		Input:          input,
	})
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, classResult{Class: class, Events: events})
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	org := fs.String("org", "", "organization ID")
	classID := fs.String("class", "", "class ID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("delete", map[string]string{"org": *org, "class": *classID}); err != nil {
		return err
	}
	if err := a.service.DeleteClass(ctx, *org, *classID); err != nil {
		return err
	}
	return writeJSON(a.stdout, map[string]string{"deleted": *classID})
}

func (a *app) runClasses(ctx context.Context, args []string) error {
	fs := a.flags("classes")
	org := fs.String("org", "", "organization ID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("classes", map[string]string{"org": *org}); err != nil {
		return err
	}
	classes, err := a.service.ListClasses(ctx, *org)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, classes)
}

func (a *app) runExpand(ctx context.Context, args []string) error {
	fs := a.flags("expand")
	tz := fs.String("tz", "", "IANA timezone of the organization")
	file := fs.String("file", "", "class payload (YAML or JSON)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("expand", map[string]string{"tz": *tz, "file": *file}); err != nil {
		return err
	}
	input, err := readClassInput(*file)
	if err != nil {
		return err
	}
	instances, err := a.service.ExpandClass(ctx, application.ExpandParams{Timezone: *tz, Input: input})
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, instances)
}

func (a *app) runEvents(ctx context.Context, args []string) error {
	fs := a.flags("events")
	org := fs.String("org", "", "organization ID")
	classID := fs.String("class", "", "restrict to one class")
	from := fs.String("from", "", "RFC 3339 lower bound")
	to := fs.String("to", "", "RFC 3339 upper bound")
	kind := fs.String("type", "", "restrict to CLASS or BLOCK events")
	tz := fs.String("tz", "", "IANA timezone used for full-day entries in ics output")
	format := fs.String("format", "json", "output format: json or ics")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := require("events", map[string]string{"org": *org}); err != nil {
		return err
	}
	if *format != "json" && *format != "ics" {
		return usagef("events: unknown format %q", *format)
	}

	info := calendar.CalendarInfo{Name: "Studio schedule", Generated: time.Now()}
	var err error
	if *tz != "" {
		if info.Location, err = time.LoadLocation(*tz); err != nil {
			return usagef("events: unknown timezone %q", *tz)
		}
	}

	query := application.EventQuery{OrganizationID: *org, ClassID: *classID, Type: *kind}
	if query.From, err = parseInstant("from", *from); err != nil {
		return err
	}
	if query.To, err = parseInstant("to", *to); err != nil {
		return err
	}

	events, err := a.service.ListEvents(ctx, query)
	if err != nil {
		return err
	}
	if *format == "json" {
		return writeJSON(a.stdout, events)
	}

	rooms, err := a.db.ListRooms(ctx, *org)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}
	names := make(map[string]string, len(rooms))
	for _, room := range rooms {
		names[room.ID] = room.Name
	}
	return calendar.Export(a.stdout, info, events, names)
}

type classResult struct {
	Class  application.Class   `json:"class"`
	Events []application.Event `json:"events"`
}

func parseInstant(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, usagef("events: -%s must be RFC 3339: %v", name, err)
	}
	return &t, nil
}

// readClassInput decodes a class payload. YAML is a superset of JSON so both are accepted.
func readClassInput(path string) (application.ClassInput, error) {
	var input application.ClassInput
	if err := decodeFile(path, &input); err != nil {
		return application.ClassInput{}, err
	}
	return input, nil
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s is empty", path)
		}
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
