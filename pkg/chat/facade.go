package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Facade wraps the raw chat backend client with the technical-user handling the
// consultant-management API requires: mutations on a room need an acting member,
// so a technical account is granted membership for the duration of the call and
// removed afterwards.
type Facade struct {
	client          Client
	technicalUserID string
}

// NewFacade creates a chat facade acting through the given technical user.
func NewFacade(client Client, technicalUserID string) *Facade {
	return &Facade{client: client, technicalUserID: technicalUserID}
}

// AddTechnicalUserToGroup grants the technical user membership in the group.
func (f *Facade) AddTechnicalUserToGroup(ctx context.Context, groupID string) error {
	if err := f.client.AddUserToGroup(ctx, f.technicalUserID, groupID); err != nil {
		return fmt.Errorf("failed to add technical user to group %s: %w", groupID, err)
	}
	return nil
}

// LeaveGroupAsTechnicalUser revokes the technical user's membership again.
func (f *Facade) LeaveGroupAsTechnicalUser(ctx context.Context, groupID string) error {
	if err := f.client.LeaveGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to leave group %s as technical user: %w", groupID, err)
	}
	return nil
}

// GroupMembers returns the current member list of the group. A blank group id
// yields an empty list without a backend call.
func (f *Facade) GroupMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	if groupID == "" {
		return nil, nil
	}
	members, err := f.client.GroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of group %s: %w", groupID, err)
	}
	return members, nil
}

// AddUserToGroup adds the user to the group. The caller is responsible for
// holding a technical-user bracket on the group.
func (f *Facade) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	if err := f.client.AddUserToGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("failed to add user %s to group %s: %w", userID, groupID, err)
	}
	return nil
}

// RemoveUserFromGroup removes the user from the group. The caller is
// responsible for holding a technical-user bracket on the group.
func (f *Facade) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	if err := f.client.RemoveUserFromGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("failed to remove user %s from group %s: %w", userID, groupID, err)
	}
	return nil
}

// DeleteGroupAsTechnicalUser deletes the room. An already-absent room is not
// an error; session teardown may run more than once.
func (f *Facade) DeleteGroupAsTechnicalUser(ctx context.Context, groupID string) error {
	err := f.client.DeleteGroup(ctx, groupID)
	if errors.Is(err, ErrGroupNotFound) {
		slog.Debug("Chat group already absent", "group_id", groupID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", groupID, err)
	}
	return nil
}

// DeleteUserAccount removes the chat backend account of the given user.
func (f *Facade) DeleteUserAccount(ctx context.Context, userID string) error {
	err := f.client.DeleteUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		slog.Debug("Chat account already absent", "user_id", userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete chat account %s: %w", userID, err)
	}
	return nil
}
