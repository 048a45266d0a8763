package usecase

import (
	"context"
	"testing"

	"gringochat/internal/domain/entity"
	"gringochat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConversation(t *testing.T) {
	f := newFixture(t)

	conversation, err := f.conversationUC.Create(context.Background(), CreateConversationInput{
		ParticipantIDs: []string{"customer-1", "store-1"},
		Kind:           "ORDER",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, conversation.ID)
	assert.Equal(t, "ORDER", conversation.Kind)
	assert.Equal(t, entity.StatusActive, conversation.Status)
	assert.ElementsMatch(t, []string{"customer-1", "store-1"}, conversation.ParticipantIDs)
	assert.Equal(t, "Ana Souza", conversation.Participants["customer-1"].DisplayName)
	assert.Equal(t, entity.PrincipalStore, conversation.Participants["store-1"].Type)
	assert.Zero(t, conversation.Participants["customer-1"].UnreadCount)
}

func TestCreateConversationDeduplicatesParticipants(t *testing.T) {
	f := newFixture(t)

	conversation, err := f.conversationUC.Create(context.Background(), CreateConversationInput{
		ParticipantIDs: []string{"customer-1", "customer-1", "store-1", ""},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"customer-1", "store-1"}, conversation.ParticipantIDs)
	assert.Equal(t, "DIRECT", conversation.Kind)
}

func TestCreateConversationRejectsEmptyParticipantList(t *testing.T) {
	f := newFixture(t)

	_, err := f.conversationUC.Create(context.Background(), CreateConversationInput{
		ParticipantIDs: []string{"", ""},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_ARGUMENT"))
}

func TestCreateConversationRejectsUnknownPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.conversationUC.Create(context.Background(), CreateConversationInput{
		ParticipantIDs: []string{"customer-1", "ghost"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetUnknownConversation(t *testing.T) {
	f := newFixture(t)

	_, err := f.conversationUC.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestAddParticipant(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1")

	updated, err := f.conversationUC.AddParticipant(context.Background(), conversation.ID, "courier-1")

	require.NoError(t, err)
	assert.True(t, updated.IsParticipant("courier-1"))
	assert.Equal(t, "Rafael Lima", updated.Participants["courier-1"].DisplayName)
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1")

	// Give customer-1 a nonzero counter, then re-add them: the join must
	// not reset the counter.
	require.NoError(t, f.conversations.IncrementUnread(context.Background(), conversation.ID, []string{"customer-1"}))

	updated, err := f.conversationUC.AddParticipant(context.Background(), conversation.ID, "customer-1")

	require.NoError(t, err)
	assert.Len(t, updated.ParticipantIDs, 2)
	assert.Equal(t, int64(1), updated.UnreadCountFor("customer-1"))
}

func TestAddParticipantToClosedConversation(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1")
	require.NoError(t, f.conversationUC.SetStatus(context.Background(), conversation.ID, entity.StatusClosed))

	_, err := f.conversationUC.AddParticipant(context.Background(), conversation.ID, "courier-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestRemoveParticipant(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1", "courier-1")

	require.NoError(t, f.conversationUC.RemoveParticipant(context.Background(), conversation.ID, "courier-1"))

	got, err := f.conversationUC.Get(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.False(t, got.IsParticipant("courier-1"))
	assert.Len(t, got.ParticipantIDs, 2)
}

func TestRemoveAbsentParticipantIsNoop(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1")

	assert.NoError(t, f.conversationUC.RemoveParticipant(context.Background(), conversation.ID, "courier-1"))
}

func TestRemoveLastParticipant(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1")

	err := f.conversationUC.RemoveParticipant(context.Background(), conversation.ID, "customer-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conversation := f.createConversation(t, "customer-1", "store-1")

	require.NoError(t, f.conversationUC.SetStatus(ctx, conversation.ID, entity.StatusClosed))

	err := f.conversationUC.SetStatus(ctx, conversation.ID, entity.StatusActive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))

	require.NoError(t, f.conversationUC.SetStatus(ctx, conversation.ID, entity.StatusDeleted))

	err = f.conversationUC.SetStatus(ctx, conversation.ID, entity.StatusClosed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_TRANSITION"))
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	conversation := f.createConversation(t, "customer-1", "store-1")

	err := f.conversationUC.SetStatus(context.Background(), conversation.ID, "PAUSED")

	require.Error(t, err)
	assert.True(t, errors.Is(err, "INVALID_ARGUMENT"))
}

func TestSetStatusDeletedPurgesMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conversation := f.createConversation(t, "customer-1", "store-1")

	_, err := f.messageUC.Send(ctx, SendMessageInput{
		ConversationID: conversation.ID,
		SenderID:       "customer-1",
		Body:           "hello",
	})
	require.NoError(t, err)

	require.NoError(t, f.conversationUC.SetStatus(ctx, conversation.ID, entity.StatusDeleted))

	assert.Equal(t, []string{conversation.ID}, f.messages.purged)
	assert.Empty(t, f.messages.messages[conversation.ID])
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conversation := f.createConversation(t, "customer-1", "store-1")

	_, err := f.messageUC.Send(ctx, SendMessageInput{
		ConversationID: conversation.ID,
		SenderID:       "store-1",
		Body:           "your order is ready",
	})
	require.NoError(t, err)

	require.NoError(t, f.conversationUC.Delete(ctx, conversation.ID))

	_, err = f.conversationUC.Get(ctx, conversation.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Contains(t, f.messages.purged, conversation.ID)
}

func TestListForPrincipalExcludesClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.createConversation(t, "customer-1", "store-1")
	closed := f.createConversation(t, "customer-1", "courier-1")
	require.NoError(t, f.conversationUC.SetStatus(ctx, closed.ID, entity.StatusClosed))
	f.createConversation(t, "store-1", "courier-1")

	conversations, err := f.conversationUC.ListForPrincipal(ctx, "customer-1")

	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, active.ID, conversations[0].ID)
}
