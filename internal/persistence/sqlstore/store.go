package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// eventBatchSize bounds the rows per INSERT so a batch stays under the
// bind parameter limits of both dialects.
const eventBatchSize = 500

// rosterTables maps a role onto its join table. Table names never come from input.
var rosterTables = map[scheduler.Role]string{
	scheduler.RoleDancer:  "class_dancers",
	scheduler.RoleTeacher: "class_teachers",
}

// Store implements persistence.Store over a pool or a transaction.
type Store struct {
	ext    sqlx.ExtContext
	mapper errorMapper
}

func newStore(ext sqlx.ExtContext, mapper errorMapper) *Store {
	return &Store{ext: ext, mapper: mapper}
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.ext.ExecContext(ctx, s.ext.Rebind(query), args...)
}

// selectIn expands a single IN (?) placeholder for ids.
func (s *Store) selectIn(ctx context.Context, dest any, query string, args ...any) error {
	expanded, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to expand IN query: %w", err)
	}
	return s.selectAll(ctx, dest, expanded, inArgs...)
}

// --- scheduler.Source implementation ---

// FindRoom returns the room if it belongs to the organization.
func (s *Store) FindRoom(ctx context.Context, organizationID, roomID string) (scheduler.Room, bool, error) {
	var row roomRow
	err := s.get(ctx, &row, `
		SELECT id, organization_id, name, created_at
		FROM rooms
		WHERE id = ? AND organization_id = ?
	`, roomID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduler.Room{}, false, nil
	}
	if err != nil {
		return scheduler.Room{}, false, s.mapper.mapError(err)
	}
	return scheduler.Room{ID: row.ID, Name: row.Name}, true, nil
}

// FindRooms returns the subset of ids that are rooms of the organization.
func (s *Store) FindRooms(ctx context.Context, organizationID string, ids []string) ([]scheduler.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []roomRow
	err := s.selectIn(ctx, &rows, `
		SELECT id, organization_id, name, created_at
		FROM rooms
		WHERE organization_id = ? AND id IN (?)
		ORDER BY name ASC, id ASC
	`, organizationID, ids)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	rooms := make([]scheduler.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, scheduler.Room{ID: row.ID, Name: row.Name})
	}
	return rooms, nil
}

// FindSeason returns the season if it belongs to the organization.
func (s *Store) FindSeason(ctx context.Context, organizationID, seasonID string) (scheduler.Season, bool, error) {
	var row seasonRow
	err := s.get(ctx, &row, `
		SELECT id, organization_id, name, created_at
		FROM seasons
		WHERE id = ? AND organization_id = ?
	`, seasonID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduler.Season{}, false, nil
	}
	if err != nil {
		return scheduler.Season{}, false, s.mapper.mapError(err)
	}
	return scheduler.Season{ID: row.ID, Name: row.Name}, true, nil
}

// FindRoutine returns the routine if it belongs to the organization.
func (s *Store) FindRoutine(ctx context.Context, organizationID, routineID string) (scheduler.Routine, bool, error) {
	var row routineRow
	err := s.get(ctx, &row, `
		SELECT id, organization_id, name, type, style, song, created_at
		FROM routines
		WHERE id = ? AND organization_id = ?
	`, routineID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduler.Routine{}, false, nil
	}
	if err != nil {
		return scheduler.Routine{}, false, s.mapper.mapError(err)
	}
	return row.toScheduler(), true, nil
}

// FindMember returns the member if they belong to the organization.
func (s *Store) FindMember(ctx context.Context, organizationID, memberID string) (scheduler.Member, bool, error) {
	var row memberRow
	err := s.get(ctx, &row, `
		SELECT id, organization_id, first_name, last_name, role, created_at
		FROM members
		WHERE id = ? AND organization_id = ?
	`, memberID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduler.Member{}, false, nil
	}
	if err != nil {
		return scheduler.Member{}, false, s.mapper.mapError(err)
	}
	return row.toScheduler(), true, nil
}

// FindMembers returns the subset of ids that are members of the organization.
func (s *Store) FindMembers(ctx context.Context, organizationID string, ids []string) ([]scheduler.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []memberRow
	err := s.selectIn(ctx, &rows, `
		SELECT id, organization_id, first_name, last_name, role, created_at
		FROM members
		WHERE organization_id = ? AND id IN (?)
		ORDER BY last_name ASC, first_name ASC, id ASC
	`, organizationID, ids)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	members := make([]scheduler.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toScheduler())
	}
	return members, nil
}

// FindOccurrencesByRoomAndWeekday lists other classes' occurrences in a room on a weekday.
func (s *Store) FindOccurrencesByRoomAndWeekday(ctx context.Context, organizationID, roomID string, day scheduler.Weekday, excludeClassID string) ([]scheduler.Booking, error) {
	var rows []bookingRow
	err := s.selectAll(ctx, &rows, `
		SELECT o.class_id, c.name AS class_name, o.weekday, o.start_seconds, o.end_seconds, o.room_id
		FROM class_occurrences o
		JOIN classes c ON c.id = o.class_id
		WHERE c.organization_id = ? AND o.room_id = ? AND o.weekday = ? AND c.id <> ?
		ORDER BY c.name ASC, o.start_seconds ASC, c.id ASC
	`, organizationID, roomID, string(day), excludeClassID)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	return toBookings(rows), nil
}

// FindClassesByMemberAndWeekday lists occurrences on a weekday of classes the
// member attends in the given role.
func (s *Store) FindClassesByMemberAndWeekday(ctx context.Context, organizationID, memberID string, day scheduler.Weekday, role scheduler.Role, excludeClassID string) ([]scheduler.Booking, error) {
	table, ok := rosterTables[role]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unknown role %q", role)
	}
	query := fmt.Sprintf(`
		SELECT o.class_id, c.name AS class_name, o.weekday, o.start_seconds, o.end_seconds, o.room_id
		FROM class_occurrences o
		JOIN classes c ON c.id = o.class_id
		JOIN %s m ON m.class_id = c.id
		WHERE c.organization_id = ? AND m.member_id = ? AND o.weekday = ? AND c.id <> ?
		ORDER BY c.name ASC, o.start_seconds ASC, c.id ASC
	`, table)

	var rows []bookingRow
	if err := s.selectAll(ctx, &rows, query, organizationID, memberID, string(day), excludeClassID); err != nil {
		return nil, s.mapper.mapError(err)
	}
	return toBookings(rows), nil
}

// FindClassesByRoutine lists other classes that reference the routine.
func (s *Store) FindClassesByRoutine(ctx context.Context, organizationID, routineID, excludeClassID string) ([]scheduler.ClassRef, error) {
	var rows []classRefRow
	err := s.selectAll(ctx, &rows, `
		SELECT id, name
		FROM classes
		WHERE organization_id = ? AND routine_id = ? AND id <> ?
		ORDER BY name ASC, id ASC
	`, organizationID, routineID, excludeClassID)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	refs := make([]scheduler.ClassRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, scheduler.ClassRef{ID: row.ID, Name: row.Name})
	}
	return refs, nil
}

func toBookings(rows []bookingRow) []scheduler.Booking {
	bookings := make([]scheduler.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toScheduler())
	}
	return bookings
}

// --- CatalogRepository implementation ---

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.exec(ctx, `
		INSERT INTO rooms (id, organization_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, room.ID, room.OrganizationID, room.Name, formatTimestamp(room.CreatedAt))
	return s.mapper.mapError(err)
}

// CreateSeason inserts a new season.
func (s *Store) CreateSeason(ctx context.Context, season persistence.Season) error {
	if season.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.exec(ctx, `
		INSERT INTO seasons (id, organization_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, season.ID, season.OrganizationID, season.Name, formatTimestamp(season.CreatedAt))
	return s.mapper.mapError(err)
}

// CreateRoutine inserts a new routine.
func (s *Store) CreateRoutine(ctx context.Context, routine persistence.Routine) error {
	if routine.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.exec(ctx, `
		INSERT INTO routines (id, organization_id, name, type, style, song, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, routine.ID, routine.OrganizationID, routine.Name, routine.Type, routine.Style, routine.Song, formatTimestamp(routine.CreatedAt))
	return s.mapper.mapError(err)
}

// CreateMember inserts a new member.
func (s *Store) CreateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.exec(ctx, `
		INSERT INTO members (id, organization_id, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, member.ID, member.OrganizationID, member.FirstName, member.LastName, string(member.Role), formatTimestamp(member.CreatedAt))
	return s.mapper.mapError(err)
}

// ListRooms returns the organization's rooms ordered by name then ID.
func (s *Store) ListRooms(ctx context.Context, organizationID string) ([]persistence.Room, error) {
	var rows []roomRow
	err := s.selectAll(ctx, &rows, `
		SELECT id, organization_id, name, created_at
		FROM rooms
		WHERE organization_id = ?
		ORDER BY name ASC, id ASC
	`, organizationID)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	rooms := make([]persistence.Room, 0, len(rows))
	for _, row := range rows {
		room, err := row.toModel()
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// --- ClassRepository implementation ---

// CreateClass inserts a class with its occurrences and roster.
func (s *Store) CreateClass(ctx context.Context, class persistence.Class) error {
	if class.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.exec(ctx, `
		INSERT INTO classes (id, organization_id, name, colour, start_date, end_date, season_id, routine_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		class.ID,
		class.OrganizationID,
		class.Name,
		class.Colour,
		class.StartDate.String(),
		class.EndDate.String(),
		nullString(class.SeasonID),
		nullString(class.RoutineID),
		formatTimestamp(class.CreatedAt),
		formatTimestamp(class.UpdatedAt),
	)
	if err != nil {
		return s.mapper.mapError(err)
	}
	if err := s.insertOccurrences(ctx, class.ID, class.Occurrences); err != nil {
		return err
	}
	if err := s.insertRoster(ctx, scheduler.RoleDancer, class.ID, class.DancerIDs); err != nil {
		return err
	}
	return s.insertRoster(ctx, scheduler.RoleTeacher, class.ID, class.TeacherIDs)
}

// GetClass retrieves a class with its occurrences and roster.
func (s *Store) GetClass(ctx context.Context, organizationID, id string) (persistence.Class, error) {
	var row classRow
	err := s.get(ctx, &row, `
		SELECT id, organization_id, name, colour, start_date, end_date, season_id, routine_id, created_at, updated_at
		FROM classes
		WHERE id = ? AND organization_id = ?
	`, id, organizationID)
	if err != nil {
		return persistence.Class{}, s.mapper.mapError(err)
	}
	class, err := row.toModel()
	if err != nil {
		return persistence.Class{}, err
	}
	if err := s.loadChildren(ctx, &class); err != nil {
		return persistence.Class{}, err
	}
	return class, nil
}

// ListClasses returns the organization's classes ordered by name then ID.
func (s *Store) ListClasses(ctx context.Context, organizationID string) ([]persistence.Class, error) {
	var rows []classRow
	err := s.selectAll(ctx, &rows, `
		SELECT id, organization_id, name, colour, start_date, end_date, season_id, routine_id, created_at, updated_at
		FROM classes
		WHERE organization_id = ?
		ORDER BY name ASC, id ASC
	`, organizationID)
	if err != nil {
		return nil, s.mapper.mapError(err)
	}
	classes := make([]persistence.Class, 0, len(rows))
	for _, row := range rows {
		class, err := row.toModel()
		if err != nil {
			return nil, err
		}
		if err := s.loadChildren(ctx, &class); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// UpdateClass replaces the scalar fields of an existing class.
func (s *Store) UpdateClass(ctx context.Context, class persistence.Class) error {
	result, err := s.exec(ctx, `
		UPDATE classes
		SET name = ?, colour = ?, start_date = ?, end_date = ?, season_id = ?, routine_id = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?
	`,
		class.Name,
		class.Colour,
		class.StartDate.String(),
		class.EndDate.String(),
		nullString(class.SeasonID),
		nullString(class.RoutineID),
		formatTimestamp(class.UpdatedAt),
		class.ID,
		class.OrganizationID,
	)
	if err != nil {
		return s.mapper.mapError(err)
	}
	return requireAffected(result)
}

// ReplaceOccurrences swaps the occurrence list of a class. Events that still
// reference the old occurrences make this fail with a foreign key violation.
func (s *Store) ReplaceOccurrences(ctx context.Context, classID string, occurrences []persistence.ClassOccurrence) error {
	if err := s.requireClass(ctx, classID); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `DELETE FROM class_occurrences WHERE class_id = ?`, classID); err != nil {
		return s.mapper.mapError(err)
	}
	return s.insertOccurrences(ctx, classID, occurrences)
}

// ReplaceMembers swaps the dancer and teacher rosters of a class.
func (s *Store) ReplaceMembers(ctx context.Context, classID string, dancerIDs, teacherIDs []string) error {
	if err := s.requireClass(ctx, classID); err != nil {
		return err
	}
	for _, role := range []scheduler.Role{scheduler.RoleDancer, scheduler.RoleTeacher} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE class_id = ?`, rosterTables[role])
		if _, err := s.exec(ctx, query, classID); err != nil {
			return s.mapper.mapError(err)
		}
	}
	if err := s.insertRoster(ctx, scheduler.RoleDancer, classID, dancerIDs); err != nil {
		return err
	}
	return s.insertRoster(ctx, scheduler.RoleTeacher, classID, teacherIDs)
}

// DeleteClass removes a class and its children. Its events must already be gone.
func (s *Store) DeleteClass(ctx context.Context, organizationID, id string) error {
	var exists int
	err := s.get(ctx, &exists, `SELECT COUNT(*) FROM classes WHERE id = ? AND organization_id = ?`, id, organizationID)
	if err != nil {
		return s.mapper.mapError(err)
	}
	if exists == 0 {
		return persistence.ErrNotFound
	}

	for _, query := range []string{
		`DELETE FROM class_dancers WHERE class_id = ?`,
		`DELETE FROM class_teachers WHERE class_id = ?`,
		`DELETE FROM class_occurrences WHERE class_id = ?`,
		`DELETE FROM classes WHERE id = ?`,
	} {
		if _, err := s.exec(ctx, query, id); err != nil {
			return s.mapper.mapError(err)
		}
	}
	return nil
}

func (s *Store) requireClass(ctx context.Context, classID string) error {
	var exists int
	if err := s.get(ctx, &exists, `SELECT COUNT(*) FROM classes WHERE id = ?`, classID); err != nil {
		return s.mapper.mapError(err)
	}
	if exists == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Store) insertOccurrences(ctx context.Context, classID string, occurrences []persistence.ClassOccurrence) error {
	if len(occurrences) == 0 {
		return nil
	}
	rows := make([]occurrenceRow, 0, len(occurrences))
	for i, occ := range occurrences {
		rows = append(rows, occurrenceRow{
			ID:           occ.ID,
			ClassID:      classID,
			RoomID:       occ.RoomID,
			Weekday:      string(occ.Weekday),
			StartSeconds: occ.Start.Seconds(),
			EndSeconds:   occ.End.Seconds(),
			Position:     i,
		})
	}
	_, err := sqlx.NamedExecContext(ctx, s.ext, `
		INSERT INTO class_occurrences (id, class_id, room_id, weekday, start_seconds, end_seconds, position)
		VALUES (:id, :class_id, :room_id, :weekday, :start_seconds, :end_seconds, :position)
	`, rows)
	return s.mapper.mapError(err)
}

func (s *Store) insertRoster(ctx context.Context, role scheduler.Role, classID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	rows := make([]rosterRow, 0, len(memberIDs))
	for i, id := range memberIDs {
		rows = append(rows, rosterRow{ClassID: classID, MemberID: id, Position: i})
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (class_id, member_id, position)
		VALUES (:class_id, :member_id, :position)
	`, rosterTables[role])
	_, err := sqlx.NamedExecContext(ctx, s.ext, query, rows)
	return s.mapper.mapError(err)
}

func (s *Store) loadChildren(ctx context.Context, class *persistence.Class) error {
	var occurrences []occurrenceRow
	err := s.selectAll(ctx, &occurrences, `
		SELECT id, class_id, room_id, weekday, start_seconds, end_seconds, position
		FROM class_occurrences
		WHERE class_id = ?
		ORDER BY position ASC
	`, class.ID)
	if err != nil {
		return s.mapper.mapError(err)
	}
	class.Occurrences = make([]persistence.ClassOccurrence, 0, len(occurrences))
	for _, row := range occurrences {
		class.Occurrences = append(class.Occurrences, row.toModel())
	}

	if class.DancerIDs, err = s.loadRoster(ctx, scheduler.RoleDancer, class.ID); err != nil {
		return err
	}
	if class.TeacherIDs, err = s.loadRoster(ctx, scheduler.RoleTeacher, class.ID); err != nil {
		return err
	}
	return nil
}

func (s *Store) loadRoster(ctx context.Context, role scheduler.Role, classID string) ([]string, error) {
	var ids []string
	query := fmt.Sprintf(`SELECT member_id FROM %s WHERE class_id = ? ORDER BY position ASC`, rosterTables[role])
	if err := s.selectAll(ctx, &ids, query, classID); err != nil {
		return nil, s.mapper.mapError(err)
	}
	return ids, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// --- EventRepository implementation ---

// CreateEvents inserts events in batches. Callers wrap it in WithinTx for atomicity.
func (s *Store) CreateEvents(ctx context.Context, events []persistence.Event) error {
	for start := 0; start < len(events); start += eventBatchSize {
		end := min(start+eventBatchSize, len(events))
		rows := make([]eventRow, 0, end-start)
		for _, ev := range events[start:end] {
			rows = append(rows, newEventRow(ev))
		}
		_, err := sqlx.NamedExecContext(ctx, s.ext, `
			INSERT INTO events (id, organization_id, kind, class_id, occurrence_id, room_id, title, colour, description, full_day, starts_at, ends_at)
			VALUES (:id, :organization_id, :kind, :class_id, :occurrence_id, :room_id, :title, :colour, :description, :full_day, :starts_at, :ends_at)
		`, rows)
		if err != nil {
			return s.mapper.mapError(err)
		}
	}
	return nil
}

const eventColumns = `id, organization_id, kind, class_id, occurrence_id, room_id, title, colour, description, full_day, starts_at, ends_at`

// GetEvent returns one event of either kind.
func (s *Store) GetEvent(ctx context.Context, organizationID, id string) (persistence.Event, error) {
	var row eventRow
	err := s.get(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = ? AND organization_id = ?`, id, organizationID)
	if err != nil {
		return persistence.Event{}, s.mapper.mapError(err)
	}
	return row.toModel()
}

// UpdateBlockEvent overwrites the mutable fields of a block event.
func (s *Store) UpdateBlockEvent(ctx context.Context, event persistence.Event) error {
	row := newEventRow(event)
	result, err := s.exec(ctx, `
		UPDATE events
		SET title = ?, colour = ?, description = ?, full_day = ?, starts_at = ?, ends_at = ?
		WHERE id = ? AND organization_id = ? AND kind = 'BLOCK'
	`, row.Title, row.Colour, row.Description, row.FullDay, row.StartsAt, row.EndsAt, row.ID, row.OrganizationID)
	if err != nil {
		return s.mapper.mapError(err)
	}
	return requireAffected(result)
}

// DeleteBlockEvent removes a single block event.
func (s *Store) DeleteBlockEvent(ctx context.Context, organizationID, id string) error {
	result, err := s.exec(ctx, `DELETE FROM events WHERE id = ? AND organization_id = ? AND kind = 'BLOCK'`, id, organizationID)
	if err != nil {
		return s.mapper.mapError(err)
	}
	return requireAffected(result)
}

// DeleteEventsForClass removes every event of a class.
func (s *Store) DeleteEventsForClass(ctx context.Context, organizationID, classID string) error {
	_, err := s.exec(ctx, `DELETE FROM events WHERE organization_id = ? AND class_id = ?`, organizationID, classID)
	return s.mapper.mapError(err)
}

// ListEvents returns events matching the filter ordered by start then ID.
func (s *Store) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	var (
		where strings.Builder
		args  = []any{filter.OrganizationID}
	)
	where.WriteString("organization_id = ?")
	if filter.Kind != "" {
		where.WriteString(" AND kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.ClassID != "" {
		where.WriteString(" AND class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.From != nil {
		where.WriteString(" AND ends_at > ?")
		args = append(args, formatInstant(*filter.From))
	}
	if filter.To != nil {
		where.WriteString(" AND starts_at < ?")
		args = append(args, formatInstant(ceilInstant(*filter.To)))
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE ` + where.String() + `
		ORDER BY starts_at ASC, id ASC
	`
	var rows []eventRow
	if err := s.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, s.mapper.mapError(err)
	}
	events := make([]persistence.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

var _ persistence.Store = (*Store)(nil)
