package chat

import (
	"context"
	"errors"
)

// ErrGroupNotFound indicates the chat backend has no room with the given id.
var ErrGroupNotFound = errors.New("chat backend: group not found")

// ErrUserNotFound indicates the chat backend has no account with the given id.
var ErrUserNotFound = errors.New("chat backend: user not found")

// GroupMember is one member of a chat backend room.
type GroupMember struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
}

// Client defines the raw chat backend operations. All operations are keyed by
// the backend's own room and user ids.
type Client interface {
	GroupMembers(ctx context.Context, groupID string) ([]GroupMember, error)
	AddUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
	LeaveGroup(ctx context.Context, groupID string) error
	DeleteGroup(ctx context.Context, groupID string) error
	DeleteUser(ctx context.Context, userID string) error
}
