package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/studio-scheduler/internal/scheduler"
)

// DefaultColour is applied when a class is submitted without a colour.
const DefaultColour = "#000000"

// OccurrenceInput is one weekly slot as submitted by a caller.
type OccurrenceInput struct {
	RoomID    string `json:"roomId" yaml:"roomId" validate:"required,uuid"`
	Weekday   string `json:"weekday" yaml:"weekday" validate:"required,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	StartTime string `json:"startTime" yaml:"startTime" validate:"required,datetime=15:04:05"`
	EndTime   string `json:"endTime" yaml:"endTime" validate:"required,datetime=15:04:05"`
}

// ClassInput is the payload for checking, creating and updating a class.
type ClassInput struct {
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Colour      string            `json:"colour,omitempty" yaml:"colour,omitempty" validate:"omitempty,len=7,hexcolor"`
	StartDate   string            `json:"startDate" yaml:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string            `json:"endDate" yaml:"endDate" validate:"required,datetime=2006-01-02"`
	SeasonID    string            `json:"seasonId,omitempty" yaml:"seasonId,omitempty" validate:"omitempty,uuid"`
	RoutineID   string            `json:"routineId,omitempty" yaml:"routineId,omitempty" validate:"omitempty,uuid"`
	Occurrences []OccurrenceInput `json:"classOccurrences" yaml:"classOccurrences" validate:"required,min=1,dive"`
	Dancers     []string          `json:"dancers,omitempty" yaml:"dancers,omitempty" validate:"omitempty,unique,dive,uuid"`
	Teachers    []string          `json:"teachers,omitempty" yaml:"teachers,omitempty" validate:"omitempty,unique,dive,uuid"`
}

// classDraft is a ClassInput that passed shape validation.
type classDraft struct {
	name        string
	colour      string
	startDate   scheduler.Date
	endDate     scheduler.Date
	seasonID    string
	routineID   string
	occurrences []scheduler.Occurrence
	dancers     []string
	teachers    []string
}

func (d classDraft) dates() scheduler.DateRange {
	return scheduler.DateRange{Start: d.startDate, End: d.endDate}
}

func (d classDraft) candidate() scheduler.Candidate {
	return scheduler.Candidate{
		Occurrences: d.occurrences,
		DancerIDs:   d.dancers,
		TeacherIDs:  d.teachers,
		SeasonID:    d.seasonID,
		RoutineID:   d.routineID,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseClassInput validates the payload shape and collects every problem
// before returning.
func parseClassInput(input ClassInput) (classDraft, *ValidationError) {
	vErr := &ValidationError{}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			vErr.add("input", err.Error())
			return classDraft{}, vErr
		}
		for _, fe := range fieldErrs {
			vErr.add(fieldPath(fe), fieldMessage(fe))
		}
	}

	draft := classDraft{
		name:      input.Name,
		colour:    strings.ToUpper(input.Colour),
		seasonID:  input.SeasonID,
		routineID: input.RoutineID,
		dancers:   input.Dancers,
		teachers:  input.Teachers,
	}
	if draft.colour == "" {
		draft.colour = DefaultColour
	}

	var startErr, endErr error
	draft.startDate, startErr = scheduler.ParseDate(input.StartDate)
	draft.endDate, endErr = scheduler.ParseDate(input.EndDate)
	if startErr == nil && endErr == nil && !draft.endDate.After(draft.startDate) {
		vErr.add("endDate", "must be after startDate")
	}

	draft.occurrences = make([]scheduler.Occurrence, 0, len(input.Occurrences))
	for i, occ := range input.Occurrences {
		start, startErr := scheduler.ParseTimeOfDay(occ.StartTime)
		end, endErr := scheduler.ParseTimeOfDay(occ.EndTime)
		if startErr == nil && endErr == nil && start >= end {
			vErr.add(fmt.Sprintf("classOccurrences[%d].endTime", i), "must be after startTime")
		}
		day, _ := scheduler.ParseWeekday(occ.Weekday)
		draft.occurrences = append(draft.occurrences, scheduler.Occurrence{
			Weekday: day,
			Start:   start,
			End:     end,
			RoomID:  occ.RoomID,
		})
	}

	if vErr.HasErrors() {
		return classDraft{}, vErr
	}
	return draft, nil
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the layout %s", fe.Param())
	case "len", "hexcolor":
		return "must be a colour in the form #RRGGBB"
	case "unique":
		return "must not contain duplicates"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
