package realtime

import (
	"Tukarin-Backend/domain"
	"Tukarin-Backend/entities"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeStore keeps documents in memory, keyed "collection/doc", with nested
// fields resolved the same way the mongo-backed store resolves them. Deleted
// paths are recorded so tests can assert what a removal actually touched.
type fakeStore struct {
	docs    map[string]map[string]any
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]any{}}
}

func splitFakePath(path string) (doc string, fields []string) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return path, nil
	}
	return segments[0] + "/" + segments[1], segments[2:]
}

func (f *fakeStore) Set(ctx context.Context, path string, value any) error {
	doc, fields := splitFakePath(path)
	if len(fields) == 0 {
		f.docs[doc] = toFieldMap(value)
		return nil
	}
	m, ok := f.docs[doc]
	if !ok {
		m = map[string]any{}
		f.docs[doc] = m
	}
	for _, field := range fields[:len(fields)-1] {
		next, ok := m[field].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[field] = next
		}
		m = next
	}
	m[fields[len(fields)-1]] = value
	return nil
}

func (f *fakeStore) Update(ctx context.Context, updates map[string]any) error {
	for path, value := range updates {
		if value == nil {
			if err := f.Delete(ctx, path); err != nil {
				return err
			}
			continue
		}
		if err := f.Set(ctx, path, value); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	doc, fields := splitFakePath(path)
	if len(fields) == 0 {
		delete(f.docs, doc)
		return nil
	}
	m, ok := f.docs[doc]
	if !ok {
		return nil
	}
	for _, field := range fields[:len(fields)-1] {
		m, ok = m[field].(map[string]any)
		if !ok {
			return nil
		}
	}
	delete(m, fields[len(fields)-1])
	return nil
}

func (f *fakeStore) Get(ctx context.Context, path string, out any) error {
	doc, fields := splitFakePath(path)
	m, ok := f.docs[doc]
	if !ok {
		return ErrKeyNotFound
	}
	var value any = m
	for _, field := range fields {
		inner, ok := value.(map[string]any)
		if !ok {
			return ErrKeyNotFound
		}
		value, ok = inner[field]
		if !ok {
			return ErrKeyNotFound
		}
	}
	raw, err := bson.Marshal(value)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (f *fakeStore) Increment(ctx context.Context, path string, delta int64) error {
	var current int64
	doc, fields := splitFakePath(path)
	if m, ok := f.docs[doc]; ok {
		value := any(m)
		for _, field := range fields {
			inner, ok := value.(map[string]any)
			if !ok {
				value = nil
				break
			}
			value = inner[field]
		}
		if n, ok := value.(int64); ok {
			current = n
		}
	}
	return f.Set(ctx, path, current+delta)
}

func toFieldMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	raw, err := bson.Marshal(value)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := bson.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func (f *fakeStore) field(t *testing.T, path string) any {
	t.Helper()
	doc, fields := splitFakePath(path)
	m, ok := f.docs[doc]
	require.True(t, ok, "document %s missing", doc)
	var value any = m
	for _, field := range fields {
		inner, ok := value.(map[string]any)
		require.True(t, ok, "field %s missing in %s", field, path)
		value = inner[field]
	}
	return value
}

func testExchange() *entities.Exchange {
	requesterID, receiverID := uuid.New(), uuid.New()
	return &entities.Exchange{
		ID:          uuid.New(),
		UserID:      requesterID,
		ToUserID:    receiverID,
		ProductID:   uuid.New(),
		ToProductID: uuid.New(),
		Status:      entities.ExchangeStatusApprove,
		Requester:   &entities.User{ID: requesterID, Fullname: "Andi"},
		Receiver:    &entities.User{ID: receiverID, Fullname: "Budi"},
		RequesterProduct: &entities.Product{
			ID: uuid.New(), UserID: requesterID, Name: "Guitar", Price: 150,
		},
		ReceiverProduct: &entities.Product{
			ID: uuid.New(), UserID: receiverID, Name: "Keyboard", Price: 150,
		},
	}
}

func TestChatKey_SortsParticipants(t *testing.T) {
	key1 := ChatKey("bbb", "aaa", "ex1")
	key2 := ChatKey("aaa", "bbb", "ex1")
	assert.Equal(t, key1, key2)
	assert.Equal(t, "aaa_bbb_exchange_ex1", key1)
}

func TestCreateChatRoom_WritesBothProjections(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	ex := testExchange()
	requesterID := ex.UserID.String()
	receiverID := ex.ToUserID.String()
	chatKey := ChatKey(requesterID, receiverID, ex.ID.String())

	service.CreateChatRoom(ctx, ex)

	// each side sees the counterpart in its projection
	forRequester := store.field(t, "chat_rooms/"+requesterID).(map[string]any)[chatKey].(roomData)
	forReceiver := store.field(t, "chat_rooms/"+receiverID).(map[string]any)[chatKey].(roomData)
	assert.Equal(t, "Budi", forRequester.User.Fullname)
	assert.Equal(t, "Andi", forReceiver.User.Fullname)
	assert.Zero(t, forRequester.UnreadCount)
	assert.Nil(t, forRequester.HasRated)
}

func TestUpdateChatMetadata_BumpsReceiverUnreadOnly(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	ex := testExchange()
	senderID := ex.UserID.String()
	receiverID := ex.ToUserID.String()
	chatKey := ChatKey(senderID, receiverID, ex.ID.String())

	service.UpdateChatMetadata(ctx, ex.Requester, ex.Receiver, ex.ID.String(), "hello")
	service.UpdateChatMetadata(ctx, ex.Requester, ex.Receiver, ex.ID.String(), "anyone there?")

	assert.Equal(t, "anyone there?", store.field(t, "chat_rooms/"+senderID+"/"+chatKey+"/last_message"))
	assert.Equal(t, int64(0), store.field(t, "chat_rooms/"+senderID+"/"+chatKey+"/unread_count"))
	assert.Equal(t, int64(2), store.field(t, "chat_rooms/"+receiverID+"/"+chatKey+"/unread_count"))
}

func TestUpdateRatingStatus_FlagsBothSides(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	raterID, ratedID, exchangeID := uuid.New().String(), uuid.New().String(), uuid.New().String()
	chatKey := ChatKey(raterID, ratedID, exchangeID)

	service.UpdateRatingStatus(ctx, raterID, ratedID, exchangeID)

	assert.Equal(t, true, store.field(t, "chat_rooms/"+raterID+"/"+chatKey+"/has_rated"))
	assert.Equal(t, false, store.field(t, "chat_rooms/"+ratedID+"/"+chatKey+"/has_rated"))
}

func TestRemoveChatRoom_DeletesBothProjections(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	ex := testExchange()
	requesterID := ex.UserID.String()
	receiverID := ex.ToUserID.String()
	chatKey := ChatKey(requesterID, receiverID, ex.ID.String())

	service.CreateChatRoom(ctx, ex)
	service.RemoveChatRoom(ctx, requesterID, receiverID, ex.ID.String())

	_, requesterHas := store.docs["chat_rooms/"+requesterID][chatKey]
	_, receiverHas := store.docs["chat_rooms/"+receiverID][chatKey]
	assert.False(t, requesterHas)
	assert.False(t, receiverHas)
	// the per-user projections are the only tree the room lives in
	assert.ElementsMatch(t, []string{
		"chat_rooms/" + requesterID + "/" + chatKey,
		"chat_rooms/" + receiverID + "/" + chatKey,
	}, store.deleted)
}

func TestExchangeCounters_IncrementAndReset(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	userID := uuid.New().String()

	service.IncrementNewExchangeCount(ctx, userID)
	service.IncrementNewExchangeCount(ctx, userID)
	assert.Equal(t, int64(2), store.field(t, "user_notifications/"+userID+"/new_exchange_requests"))

	service.ResetNewExchangeCount(ctx, userID)
	assert.Equal(t, int64(0), store.field(t, "user_notifications/"+userID+"/new_exchange_requests"))
}

func TestIsUserActiveInChat_MatchesHeartbeat(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	userID := uuid.New().String()
	otherID := uuid.New().String()
	exchangeID := uuid.New().String()

	assert.False(t, service.IsUserActiveInChat(ctx, userID, otherID, exchangeID))

	err := service.UpdateClientStatus(ctx, userID, domain.UpdateClientStatusRequest{
		Status: "app_open",
		ActiveChat: &domain.ActiveChat{
			UserID:     otherID,
			ExchangeID: exchangeID,
		},
	})
	require.NoError(t, err)

	assert.True(t, service.IsUserActiveInChat(ctx, userID, otherID, exchangeID))
	assert.False(t, service.IsUserActiveInChat(ctx, userID, otherID, uuid.New().String()))
	assert.False(t, service.IsUserActiveInChat(ctx, userID, uuid.New().String(), exchangeID))
}

func TestUpdateClientStatus_ClearsStalePresence(t *testing.T) {
	store := newFakeStore()
	service := NewRealtimeService(store)
	ctx := context.Background()
	userID := uuid.New().String()
	otherID := uuid.New().String()
	exchangeID := uuid.New().String()

	require.NoError(t, service.UpdateClientStatus(ctx, userID, domain.UpdateClientStatusRequest{
		Status: "app_open",
		ActiveChat: &domain.ActiveChat{
			UserID:     otherID,
			ExchangeID: exchangeID,
		},
	}))
	require.NoError(t, service.UpdateClientStatus(ctx, userID, domain.UpdateClientStatusRequest{
		Status: "background",
	}))

	assert.False(t, service.IsUserActiveInChat(ctx, userID, otherID, exchangeID))
}
