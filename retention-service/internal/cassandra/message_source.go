package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/tradepost/marketplace-automation/retention-service/internal/domain"
)

// Schema:
//
//	CREATE TABLE messages_by_room (
//	    room_id    text,
//	    message_id text,
//	    created_at timestamp,
//	    sender_id  text,
//	    content    text,
//	    PRIMARY KEY (room_id, message_id)
//	);
const (
	selectRoomsCQL    = `SELECT DISTINCT room_id FROM messages_by_room`
	selectMessagesCQL = `SELECT message_id, created_at FROM messages_by_room WHERE room_id = ?`
	deleteMessageCQL  = `DELETE FROM messages_by_room WHERE room_id = ? AND message_id = ?`
)

// MessageSource enumerates chat rooms and deletes their messages.
type MessageSource struct {
	db cql
}

// NewMessageSource creates a new MessageSource.
func NewMessageSource(client *Client) *MessageSource {
	return &MessageSource{db: client}
}

// Groups returns every room with all of its messages. Rooms are
// partitions, so each room is one delete scope.
func (s *MessageSource) Groups(ctx context.Context, cutoff time.Time) ([]domain.Group, error) {
	rooms, err := s.rooms(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rooms))
	for _, roomID := range rooms {
		records, err := s.messages(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			continue
		}
		groups = append(groups, domain.Group{ID: roomID, Records: records})
	}
	return groups, nil
}

func (s *MessageSource) rooms(ctx context.Context) ([]string, error) {
	iter := s.db.query(ctx, selectRoomsCQL)

	var (
		rooms  []string
		roomID string
	)
	for iter.Scan(&roomID) {
		rooms = append(rooms, roomID)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *MessageSource) messages(ctx context.Context, roomID string) ([]domain.Record, error) {
	records, err := scanRecords(s.db.query(ctx, selectMessagesCQL, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for room %s: %w", roomID, err)
	}
	return records, nil
}

// scanRecords maps (message_id, created_at) rows to records. A null
// created_at becomes the zero time, which the sweeper never deletes.
func scanRecords(iter rows) ([]domain.Record, error) {
	var (
		records   []domain.Record
		messageID string
		createdAt time.Time
	)
	for iter.Scan(&messageID, &createdAt) {
		records = append(records, domain.Record{Key: messageID, Timestamp: createdAt})
		createdAt = time.Time{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteBatch removes the given messages of one room in a logged batch.
// All statements target one partition, so the batch applies atomically.
func (s *MessageSource) DeleteBatch(ctx context.Context, roomID string, messageIDs []string) error {
	argSets := make([][]interface{}, 0, len(messageIDs))
	for _, id := range messageIDs {
		argSets = append(argSets, []interface{}{roomID, id})
	}

	if err := s.db.loggedBatch(ctx, deleteMessageCQL, argSets); err != nil {
		return fmt.Errorf("failed to delete %d messages from room %s: %w", len(messageIDs), roomID, err)
	}
	return nil
}
