package scheduler

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrReferenceNotFound marks a referenced entity that does not exist in the organization.
	ErrReferenceNotFound = errors.New("scheduler: referenced entity not found")
	// ErrRoleMismatch marks a member referenced in a role they do not hold.
	ErrRoleMismatch = errors.New("scheduler: member role mismatch")
)

// ResourceSeasons labels season reference failures. Seasons are never a conflict dimension.
const ResourceSeasons ResourceType = "Seasons"

// ReferenceError reports the first referential problem found in a candidate.
type ReferenceError struct {
	Resource ResourceType
	Message  string
	Err      error
}

func (e *ReferenceError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ReferenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReferenceSource resolves the entities a class refers to within an organization.
// Batch lookups return only the entities that exist.
type ReferenceSource interface {
	FindRooms(ctx context.Context, organizationID string, ids []string) ([]Room, error)
	FindSeason(ctx context.Context, organizationID, seasonID string) (Season, bool, error)
	FindRoutine(ctx context.Context, organizationID, routineID string) (Routine, bool, error)
	FindMembers(ctx context.Context, organizationID string, ids []string) ([]Member, error)
}

// ValidateReferences checks rooms, season, routine, dancers and teachers in that
// order and returns a *ReferenceError for the first problem found.
func ValidateReferences(ctx context.Context, src ReferenceSource, candidate Candidate, organizationID string) error {
	roomIDs := make([]string, 0, len(candidate.Occurrences))
	for _, occ := range candidate.Occurrences {
		roomIDs = append(roomIDs, occ.RoomID)
	}
	roomIDs = distinct(roomIDs)
	if len(roomIDs) > 0 {
		rooms, err := src.FindRooms(ctx, organizationID, roomIDs)
		if err != nil {
			return fmt.Errorf("find rooms: %w", err)
		}
		if len(rooms) != len(roomIDs) {
			return notFound(ResourceRooms, "One or more rooms not found.")
		}
	}

	if candidate.SeasonID != "" {
		_, ok, err := src.FindSeason(ctx, organizationID, candidate.SeasonID)
		if err != nil {
			return fmt.Errorf("find season: %w", err)
		}
		if !ok {
			return notFound(ResourceSeasons, "Season not found.")
		}
	}

	if candidate.RoutineID != "" {
		_, ok, err := src.FindRoutine(ctx, organizationID, candidate.RoutineID)
		if err != nil {
			return fmt.Errorf("find routine: %w", err)
		}
		if !ok {
			return notFound(ResourceRoutines, "Routine not found.")
		}
	}

	if err := validateMembers(ctx, src, organizationID, candidate.DancerIDs, RoleDancer, ResourceDancers, "dancers"); err != nil {
		return err
	}
	return validateMembers(ctx, src, organizationID, candidate.TeacherIDs, RoleTeacher, ResourceTeachers, "teachers")
}

func validateMembers(ctx context.Context, src ReferenceSource, organizationID string, ids []string, role Role, resource ResourceType, noun string) error {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil
	}

	members, err := src.FindMembers(ctx, organizationID, ids)
	if err != nil {
		return fmt.Errorf("find %s: %w", noun, err)
	}
	if len(members) != len(ids) {
		return notFound(resource, fmt.Sprintf("One or more %s not found.", noun))
	}
	for _, member := range members {
		if !member.HasRole(role) {
			return &ReferenceError{
				Resource: resource,
				Message:  fmt.Sprintf("Some %s do not have the %s role.", noun, role),
				Err:      ErrRoleMismatch,
			}
		}
	}
	return nil
}

func notFound(resource ResourceType, message string) *ReferenceError {
	return &ReferenceError{Resource: resource, Message: message, Err: ErrReferenceNotFound}
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
