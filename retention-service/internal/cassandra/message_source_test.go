package cassandra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tradepost/marketplace-automation/retention-service/internal/sweeper"
)

// fakeRows yields fixed rows. A nil column leaves the destination
// untouched, as gocql does for some null values.
type fakeRows struct {
	data [][]interface{}
	pos  int
	err  error
}

func (r *fakeRows) Scan(dest ...interface{}) bool {
	if r.pos >= len(r.data) {
		return false
	}
	row := r.data[r.pos]
	r.pos++
	for i, v := range row {
		if v == nil {
			continue
		}
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return true
}

func (r *fakeRows) Close() error { return r.err }

type batchCall struct {
	stmt    string
	argSets [][]interface{}
}

type fakeCQL struct {
	rooms      *fakeRows
	messages   map[string]*fakeRows
	batches    []batchCall
	loggedFn   func(argSets [][]interface{}) error
	queriedFor []string
}

func (f *fakeCQL) query(_ context.Context, stmt string, args ...interface{}) rows {
	if stmt == selectRoomsCQL {
		return f.rooms
	}
	room := args[0].(string)
	f.queriedFor = append(f.queriedFor, room)
	if r, ok := f.messages[room]; ok {
		return r
	}
	return &fakeRows{}
}

func (f *fakeCQL) loggedBatch(_ context.Context, stmt string, argSets [][]interface{}) error {
	f.batches = append(f.batches, batchCall{stmt: stmt, argSets: argSets})
	if f.loggedFn != nil {
		return f.loggedFn(argSets)
	}
	return nil
}

func TestScanRecords(t *testing.T) {
	t1 := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)

	records, err := scanRecords(&fakeRows{data: [][]interface{}{
		{"m1", t1},
		{"m2", nil},
		{"m3", t3},
	}})
	if err != nil {
		t.Fatalf("scanRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %v", records)
	}
	if records[0].Key != "m1" || !records[0].Timestamp.Equal(t1) {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Key != "m2" || !records[1].Timestamp.IsZero() {
		t.Errorf("null created_at should map to zero time, got %+v", records[1])
	}
	if !records[2].Timestamp.Equal(t3) {
		t.Errorf("records[2] = %+v", records[2])
	}

	iterErr := errors.New("read timeout")
	if _, err := scanRecords(&fakeRows{err: iterErr}); !errors.Is(err, iterErr) {
		t.Errorf("scanRecords() error = %v, want %v", err, iterErr)
	}
}

func TestMessageSource_Groups(t *testing.T) {
	old := time.Now().Add(-30 * 24 * time.Hour)
	db := &fakeCQL{
		rooms: &fakeRows{data: [][]interface{}{{"room_a"}, {"room_empty"}, {"room_b"}}},
		messages: map[string]*fakeRows{
			"room_a": {data: [][]interface{}{{"a1", old}, {"a2", old}}},
			"room_b": {data: [][]interface{}{{"b1", old}}},
		},
	}
	src := &MessageSource{db: db}

	groups, err := src.Groups(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Groups() error = %v", err)
	}
	if len(groups) != 2 || groups[0].ID != "room_a" || groups[1].ID != "room_b" {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[0].Records) != 2 || len(groups[1].Records) != 1 {
		t.Errorf("records per group = %d, %d", len(groups[0].Records), len(groups[1].Records))
	}
	if len(db.queriedFor) != 3 {
		t.Errorf("queried rooms = %v, want all three", db.queriedFor)
	}
}

func TestMessageSource_GroupsErrors(t *testing.T) {
	scanErr := errors.New("unavailable")

	t.Run("room listing fails", func(t *testing.T) {
		src := &MessageSource{db: &fakeCQL{rooms: &fakeRows{err: scanErr}}}
		if _, err := src.Groups(context.Background(), time.Now()); !errors.Is(err, scanErr) {
			t.Errorf("Groups() error = %v, want %v", err, scanErr)
		}
	})

	t.Run("message listing fails", func(t *testing.T) {
		src := &MessageSource{db: &fakeCQL{
			rooms:    &fakeRows{data: [][]interface{}{{"room_a"}}},
			messages: map[string]*fakeRows{"room_a": {err: scanErr}},
		}}
		if _, err := src.Groups(context.Background(), time.Now()); !errors.Is(err, scanErr) {
			t.Errorf("Groups() error = %v, want %v", err, scanErr)
		}
	})
}

func TestMessageSource_DeleteBatch(t *testing.T) {
	db := &fakeCQL{}
	src := &MessageSource{db: db}

	if err := src.DeleteBatch(context.Background(), "room_a", []string{"m1", "m2"}); err != nil {
		t.Fatalf("DeleteBatch() error = %v", err)
	}
	if len(db.batches) != 1 || db.batches[0].stmt != deleteMessageCQL {
		t.Fatalf("batches = %+v", db.batches)
	}
	got := db.batches[0].argSets
	if len(got) != 2 || got[0][0] != "room_a" || got[0][1] != "m1" || got[1][1] != "m2" {
		t.Errorf("argSets = %v", got)
	}

	batchErr := errors.New("write timeout")
	db.loggedFn = func([][]interface{}) error { return batchErr }
	if err := src.DeleteBatch(context.Background(), "room_a", []string{"m3"}); !errors.Is(err, batchErr) {
		t.Errorf("DeleteBatch() error = %v, want %v", err, batchErr)
	}
}

func TestMessageSource_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 15, 0, 0, time.UTC)
	retention := 7 * 24 * time.Hour
	cutoff := now.Add(-retention)

	db := &fakeCQL{
		rooms: &fakeRows{data: [][]interface{}{{"room_a"}}},
		messages: map[string]*fakeRows{"room_a": {data: [][]interface{}{
			{"old", cutoff.Add(-time.Millisecond)},
			{"edge", cutoff},
			{"fresh", now},
			{"undated", nil},
		}}},
	}

	sw := sweeper.New(&MessageSource{db: db}, sweeper.WithClock(func() time.Time { return now }))
	res, err := sw.Sweep(context.Background(), sweeper.Config{Name: "messages", Retention: retention, BatchSize: 100})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if res.Deleted != 1 || len(db.batches) != 1 {
		t.Fatalf("deleted = %d batches = %d", res.Deleted, len(db.batches))
	}
	if args := db.batches[0].argSets; len(args) != 1 || args[0][1] != "old" {
		t.Errorf("deleted keys = %v", args)
	}
}
