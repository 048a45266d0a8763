package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"gringochat/internal/domain/entity"
	"gringochat/internal/infrastructure/cache"
	"gringochat/pkg/errors"
)

// fixture wires the full usecase stack against in-memory collaborators,
// with a real cache so invalidation behavior is exercised end to end.
type fixture struct {
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	identity      *fakeIdentityResolver
	notifier      *fakeNotifier
	cache         *cache.Cache

	conversationUC *ConversationUseCase
	messageUC      *MessageUseCase
	unreadUC       *UnreadUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		conversations: newFakeConversationRepo(),
		messages:      newFakeMessageRepo(),
		identity:      newFakeIdentityResolver(),
		notifier:      newFakeNotifier(),
		cache:         cache.New(time.Minute),
	}
	t.Cleanup(f.cache.Stop)

	f.identity.add("customer-1", "Ana Souza", entity.PrincipalCustomer)
	f.identity.add("store-1", "Padaria Central", entity.PrincipalStore)
	f.identity.add("courier-1", "Rafael Lima", entity.PrincipalCourier)

	f.unreadUC = NewUnreadUseCase(f.conversations, f.cache, time.Minute)
	f.conversationUC = NewConversationUseCase(f.conversations, f.messages, f.identity)
	f.messageUC = NewMessageUseCase(f.conversations, f.messages, f.unreadUC, NewNotificationBridge(f.notifier))

	return f
}

func (f *fixture) createConversation(t *testing.T, participantIDs ...string) *entity.Conversation {
	t.Helper()

	conversation, err := f.conversationUC.Create(context.Background(), CreateConversationInput{
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return conversation
}

type fakeConversationRepo struct {
	mu             sync.Mutex
	conversations  map[string]*entity.Conversation
	hasUnreadCalls int
	nextID         int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*entity.Conversation),
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conversation.ID == "" {
		r.nextID++
		conversation.ID = fmt.Sprintf("conv-%d", r.nextID)
	}
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conversation, nil
}

func (r *fakeConversationRepo) ListByPrincipal(ctx context.Context, principalID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.Status == entity.StatusActive && conversation.IsParticipant(principalID) {
			result = append(result, conversation)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *fakeConversationRepo) AddParticipant(ctx context.Context, id string, participant *entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if !conversation.IsParticipant(participant.PrincipalID) {
		conversation.ParticipantIDs = append(conversation.ParticipantIDs, participant.PrincipalID)
	}
	conversation.Participants[participant.PrincipalID] = participant
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) RemoveParticipant(ctx context.Context, id string, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	var ids []string
	for _, participantID := range conversation.ParticipantIDs {
		if participantID != principalID {
			ids = append(ids, participantID)
		}
	}
	conversation.ParticipantIDs = ids
	delete(conversation.Participants, principalID)
	conversation.UnreadFor = removeString(conversation.UnreadFor, principalID)
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) SetStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.Status = status
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) SetLastMessage(ctx context.Context, id string, messageID, body string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.LastMessageID = messageID
	conversation.LastMessageBody = body
	conversation.LastMessageAt = at
	conversation.UpdatedAt = at
	return nil
}

// IncrementUnread mirrors the Firestore adapter's contract: the whole
// update is applied under one lock, so concurrent sends never lose
// increments.
func (r *fakeConversationRepo) IncrementUnread(ctx context.Context, id string, recipients []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	for _, principalID := range recipients {
		if participant, ok := conversation.Participants[principalID]; ok {
			participant.UnreadCount++
		}
		if !containsString(conversation.UnreadFor, principalID) {
			conversation.UnreadFor = append(conversation.UnreadFor, principalID)
		}
	}
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) ResetUnread(ctx context.Context, id string, principalID string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if participant, ok := conversation.Participants[principalID]; ok {
		participant.UnreadCount = 0
		participant.LastReadAt = readAt
	}
	conversation.UnreadFor = removeString(conversation.UnreadFor, principalID)
	return nil
}

func (r *fakeConversationRepo) HasUnread(ctx context.Context, principalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hasUnreadCalls++
	for _, conversation := range r.conversations {
		if conversation.Status == entity.StatusActive && containsString(conversation.UnreadFor, principalID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.Message
	purged   []string
	nextID   int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		r.nextID++
		message.ID = fmt.Sprintf("msg-%d", r.nextID)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.messages[conversationID]
	total := int64(len(all))

	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return all[start:end], total, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, conversationID, principalID string, readAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamped := 0
	for _, message := range r.messages[conversationID] {
		if message.ReadByPrincipal(principalID) {
			continue
		}
		message.ReadBy[principalID] = readAt
		stamped++
	}
	return stamped, nil
}

func (r *fakeMessageRepo) PurgeByConversation(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, conversationID)
	r.purged = append(r.purged, conversationID)
	return nil
}

type fakeIdentityResolver struct {
	principals map[string]*entity.Principal
}

func newFakeIdentityResolver() *fakeIdentityResolver {
	return &fakeIdentityResolver{
		principals: make(map[string]*entity.Principal),
	}
}

func (r *fakeIdentityResolver) add(id, displayName, principalType string) {
	r.principals[id] = &entity.Principal{
		ID:          id,
		DisplayName: displayName,
		Type:        principalType,
	}
}

func (r *fakeIdentityResolver) Resolve(ctx context.Context, principalID string) (*entity.Principal, error) {
	principal, ok := r.principals[principalID]
	if !ok {
		return nil, errors.NotFound("Principal", nil)
	}
	return principal, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sends   []string
	failFor map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		failFor: make(map[string]error),
	}
}

func (n *fakeNotifier) Send(ctx context.Context, recipientID, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err, ok := n.failFor[recipientID]; ok {
		return err
	}
	n.sends = append(n.sends, recipientID)
	return nil
}

func (n *fakeNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := append([]string(nil), n.sends...)
	sort.Strings(out)
	return out
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) []string {
	var out []string
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}
