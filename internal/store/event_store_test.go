package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/paging"
)

func newTestStore(t *testing.T) (*EventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewEventStore(gormDB, log), mock
}

func eventColumns() []string {
	return []string{"id", "name", "slug", "date", "organizer_id", "attendee_count", "is_free"}
}

func TestGetEventsNoMatches(t *testing.T) {
	s, mock := newTestStore(t)
	// Count and page queries run concurrently.
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	page, storeErr := s.GetEvents(context.Background(), EventFilter{Query: "nothing matches this"})
	require.Nil(t, storeErr)
	require.Empty(t, page.Events)
	require.Empty(t, page.NextCursor)
	require.Zero(t, page.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventsFirstPageWithLookahead(t *testing.T) {
	s, mock := newTestStore(t)
	mock.MatchExpectationsInOrder(false)

	organizerID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	dates := []time.Time{
		time.Date(2025, 7, 3, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 2, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC),
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WithArgs("music", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	rows := sqlmock.NewRows(eventColumns())
	for i := range ids {
		rows.AddRow(ids[i].String(), "Event", "event-"+ids[i].String()[:8], dates[i], organizerID.String(), 0, true)
	}
	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WithArgs("music", true).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, storeErr := s.GetEvents(context.Background(), EventFilter{
		Category: "music",
		OnlyFree: true,
		Limit:    2,
	})
	require.Nil(t, storeErr)
	require.Len(t, page.Events, 2)
	require.EqualValues(t, 5, page.Total)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := paging.Decode(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, ids[1].String(), cursor.ID)
	require.Equal(t, dates[1].UTC().Format(time.RFC3339Nano), cursor.SortValue)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventsSecondPageFromCursor(t *testing.T) {
	s, mock := newTestStore(t)
	mock.MatchExpectationsInOrder(false)

	organizerID := uuid.New()
	cursorID := uuid.New()
	cursorDate := time.Date(2025, 7, 2, 18, 0, 0, 0, time.UTC)
	token := paging.Encode(cursorDate.Format(time.RFC3339Nano), cursorID.String())
	seek, err := time.Parse(time.RFC3339Nano, cursorDate.Format(time.RFC3339Nano))
	require.NoError(t, err)

	// The cursor row must still exist before the page is fetched.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "events" WHERE id`).
		WithArgs(cursorID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WithArgs("music").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	rows := sqlmock.NewRows(eventColumns())
	for i, date := range []time.Time{
		time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC),
	} {
		rows.AddRow(ids[i].String(), "Event", "event-"+ids[i].String()[:8], date, organizerID.String(), 0, true)
	}
	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WithArgs("music", seek, seek, cursorID.String()).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, storeErr := s.GetEvents(context.Background(), EventFilter{
		Category: "music",
		Limit:    2,
		Cursor:   token,
	})
	require.Nil(t, storeErr)
	require.Len(t, page.Events, 2)
	require.EqualValues(t, 4, page.Total)
	// Two rows for a limit of two means no lookahead row: final page.
	require.Empty(t, page.NextCursor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventsPriceSortSeeksPastFreeEvents(t *testing.T) {
	s, mock := newTestStore(t)
	mock.MatchExpectationsInOrder(false)

	organizerID := uuid.New()
	cursorID := uuid.New()
	// A free event encodes its NULL price as "0" in the cursor.
	token := paging.Encode("0", cursorID.String())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events" WHERE id`).
		WithArgs(cursorID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	columns := []string{"id", "name", "slug", "date", "organizer_id", "price", "is_free"}
	rows := sqlmock.NewRows(columns)
	for _, id := range ids {
		rows.AddRow(id.String(), "Free Event", "free-"+id.String()[:8], time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC), organizerID.String(), nil, true)
	}
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE \(COALESCE\(events\.price, 0\) < \$1\) OR \(COALESCE\(events\.price, 0\) = \$2 AND events\.id < \$3\).*ORDER BY COALESCE\(events\.price, 0\) DESC, events\.id DESC`).
		WithArgs(0, 0, cursorID.String()).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, storeErr := s.GetEvents(context.Background(), EventFilter{
		Sort:   "price",
		Limit:  2,
		Cursor: token,
	})
	require.Nil(t, storeErr)
	require.Len(t, page.Events, 2)
	require.Nil(t, page.Events[0].Price)
	require.EqualValues(t, 5, page.Total)

	cursor, err := paging.Decode(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, "0", cursor.SortValue)
	require.Equal(t, ids[1].String(), cursor.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventsStaleCursor(t *testing.T) {
	s, mock := newTestStore(t)

	deletedID := uuid.New()
	token := paging.Encode(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano), deletedID.String())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
		WithArgs(deletedID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, storeErr := s.GetEvents(context.Background(), EventFilter{Cursor: token})
	require.Nil(t, storeErr)
	require.Empty(t, page.Events)
	require.Empty(t, page.NextCursor)
	require.Zero(t, page.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventsMalformedCursor(t *testing.T) {
	s, mock := newTestStore(t)

	page, storeErr := s.GetEvents(context.Background(), EventFilter{Cursor: "!!not a cursor!!"})
	require.Nil(t, storeErr)
	require.Empty(t, page.Events)
	require.Zero(t, page.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventBySlugNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	event, storeErr := s.GetEventBySlug(context.Background(), "vanished-event")
	require.Nil(t, event)
	require.NotNil(t, storeErr)
	require.Equal(t, CodeNotFound, storeErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventVirtualRequiresURL(t *testing.T) {
	s, mock := newTestStore(t)

	result, storeErr := s.CreateEvent(context.Background(), uuid.New(), EventInput{
		Name:      "Remote Meetup",
		Date:      time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EventType: models.EventTypeVirtual,
		Virtual:   &VirtualEventInput{Platform: "zoom"},
	})
	require.NotNil(t, storeErr)
	require.Equal(t, CodeValidation, storeErr.Code)
	require.False(t, result.Success)
	// No write may happen on validation failure.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventUnauthorized(t *testing.T) {
	s, mock := newTestStore(t)

	eventID := uuid.New()
	ownerID := uuid.New()
	intruderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organizer_id", "status"}).
			AddRow(eventID.String(), ownerID.String(), models.StatusPublished))
	mock.ExpectRollback()

	result, storeErr := s.DeleteEvent(context.Background(), eventID, intruderID, "soft")
	require.NotNil(t, storeErr)
	require.Equal(t, CodeUnauthorized, storeErr.Code)
	require.False(t, result.Success)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventInvalidMode(t *testing.T) {
	s, mock := newTestStore(t)

	_, storeErr := s.DeleteEvent(context.Background(), uuid.New(), uuid.New(), "forever")
	require.NotNil(t, storeErr)
	require.Equal(t, CodeValidation, storeErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterForEventFull(t *testing.T) {
	s, mock := newTestStore(t)

	eventID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "event_attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "events" SET "attendee_count"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eventID.String()))
	mock.ExpectRollback()

	result, storeErr := s.RegisterForEvent(context.Background(), eventID, userID)
	require.NotNil(t, storeErr)
	require.Equal(t, CodeEventFull, storeErr.Code)
	require.False(t, result.Success)
	require.Equal(t, "Failed to register for event", result.Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterForEventAlreadyRegistered(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "event_attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, storeErr := s.RegisterForEvent(context.Background(), uuid.New(), uuid.New())
	require.NotNil(t, storeErr)
	require.Equal(t, CodeAlreadyRegistered, storeErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
