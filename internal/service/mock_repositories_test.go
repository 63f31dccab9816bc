package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/models"
)

// MockMessageRepository is an in-memory implementation of
// MessageRepositoryInterface for testing
type MockMessageRepository struct {
	messages       map[uint]*models.Message
	deliveries     map[uint]*models.MessageDelivery
	nextMessageID  uint
	nextDeliveryID uint
	failCreate     bool
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages:       make(map[uint]*models.Message),
		deliveries:     make(map[uint]*models.MessageDelivery),
		nextMessageID:  1,
		nextDeliveryID: 1,
	}
}

func (m *MockMessageRepository) CreateWithDeliveries(message *models.Message, recipientIDs []uint) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	if message.ID == 0 {
		message.ID = m.nextMessageID
		m.nextMessageID++
	}
	message.CreatedAt = time.Now()
	m.messages[message.ID] = message
	for _, recipientID := range recipientIDs {
		d := &models.MessageDelivery{
			ID:          m.nextDeliveryID,
			MessageID:   message.ID,
			RecipientID: recipientID,
			CreatedAt:   message.CreatedAt,
		}
		m.nextDeliveryID++
		m.deliveries[d.ID] = d
		message.Deliveries = append(message.Deliveries, *d)
	}
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockMessageRepository) FindDeliveryByID(id uint) (*models.MessageDelivery, error) {
	if d, ok := m.deliveries[id]; ok {
		return d, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockMessageRepository) ListInbox(userID uint, limit int) ([]models.MessageDelivery, error) {
	var result []models.MessageDelivery
	for _, d := range m.deliveries {
		if len(result) >= limit {
			break
		}
		if d.RecipientID != userID || d.ReadAt != nil {
			continue
		}
		msg, ok := m.messages[d.MessageID]
		if !ok || msg.DeletedAt != nil {
			continue
		}
		item := *d
		item.Message = *msg
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *MockMessageRepository) ListOutbox(senderID uint, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if len(result) >= limit {
			break
		}
		if msg.SenderID != senderID || msg.DeletedAt != nil {
			continue
		}
		item := *msg
		item.Deliveries = nil
		for _, d := range m.deliveries {
			if d.MessageID == msg.ID {
				item.Deliveries = append(item.Deliveries, *d)
			}
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *MockMessageRepository) CountUnreadForUser(userID uint) (int64, error) {
	var count int64
	for _, d := range m.deliveries {
		if d.RecipientID != userID || d.ReadAt != nil {
			continue
		}
		if msg, ok := m.messages[d.MessageID]; ok && msg.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) MarkDeliveryRead(deliveryID, recipientID uint, at time.Time) (bool, error) {
	d, ok := m.deliveries[deliveryID]
	if !ok || d.RecipientID != recipientID || d.ReadAt != nil {
		return false, nil
	}
	d.ReadAt = &at
	return true, nil
}

func (m *MockMessageRepository) HasDelivery(messageID, recipientID uint) (bool, error) {
	for _, d := range m.deliveries {
		if d.MessageID == messageID && d.RecipientID == recipientID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMessageRepository) CountUnreadForMessage(messageID uint) (int64, error) {
	var count int64
	for _, d := range m.deliveries {
		if d.MessageID == messageID && d.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) SoftDelete(messageID uint, at time.Time) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return errors.New("record not found")
	}
	if msg.DeletedAt == nil {
		msg.DeletedAt = &at
	}
	return nil
}

func (m *MockMessageRepository) ListExpired(softDeletedBefore, createdBefore time.Time) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.DeletedAt != nil && msg.DeletedAt.Before(softDeletedBefore) {
			result = append(result, *msg)
			continue
		}
		if msg.DeletedAt == nil && msg.CreatedAt.Before(createdBefore) {
			result = append(result, *msg)
		}
	}
	return result, nil
}

func (m *MockMessageRepository) PurgeMessages(ids []uint) (int64, int64, error) {
	var deliveries, messages int64
	for _, id := range ids {
		for did, d := range m.deliveries {
			if d.MessageID == id {
				delete(m.deliveries, did)
				deliveries++
			}
		}
		if _, ok := m.messages[id]; ok {
			delete(m.messages, id)
			messages++
		}
	}
	return deliveries, messages, nil
}

// MockFriendRepository is an in-memory implementation of
// FriendRepositoryInterface for testing
type MockFriendRepository struct {
	requests    map[uint]*models.FriendRequest
	friendships map[[2]uint]bool
	nextID      uint
}

func NewMockFriendRepository() *MockFriendRepository {
	return &MockFriendRepository{
		requests:    make(map[uint]*models.FriendRequest),
		friendships: make(map[[2]uint]bool),
		nextID:      1,
	}
}

func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

func (m *MockFriendRepository) AddFriendship(a, b uint) {
	m.friendships[pairKey(a, b)] = true
}

func (m *MockFriendRepository) CreateRequest(request *models.FriendRequest) error {
	if request.ID == 0 {
		request.ID = m.nextID
		m.nextID++
	}
	request.CreatedAt = time.Now()
	m.requests[request.ID] = request
	return nil
}

func (m *MockFriendRepository) FindRequestByID(id uint) (*models.FriendRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockFriendRepository) FindPendingBetween(userID1, userID2 uint) (*models.FriendRequest, error) {
	for _, r := range m.requests {
		if r.Status != models.RequestPending {
			continue
		}
		if (r.FromUserID == userID1 && r.ToUserID == userID2) ||
			(r.FromUserID == userID2 && r.ToUserID == userID1) {
			return r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *MockFriendRepository) ListIncomingPending(userID uint) ([]models.FriendRequest, error) {
	var result []models.FriendRequest
	for _, r := range m.requests {
		if r.ToUserID == userID && r.Status == models.RequestPending {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *MockFriendRepository) UpdateRequestStatus(id uint, status models.FriendRequestStatus) error {
	r, ok := m.requests[id]
	if !ok {
		return errors.New("record not found")
	}
	r.Status = status
	return nil
}

func (m *MockFriendRepository) AcceptRequest(request *models.FriendRequest) error {
	r, ok := m.requests[request.ID]
	if !ok {
		return errors.New("record not found")
	}
	r.Status = models.RequestAccepted
	m.friendships[pairKey(r.FromUserID, r.ToUserID)] = true
	return nil
}

func (m *MockFriendRepository) FriendshipExists(userID1, userID2 uint) (bool, error) {
	return m.friendships[pairKey(userID1, userID2)], nil
}

func (m *MockFriendRepository) ListFriends(userID uint) ([]models.User, error) {
	var result []models.User
	for _, id := range m.friendIDs(userID) {
		result = append(result, models.User{ID: id})
	}
	return result, nil
}

func (m *MockFriendRepository) ListFriendIDs(userID uint) ([]uint, error) {
	return m.friendIDs(userID), nil
}

func (m *MockFriendRepository) friendIDs(userID uint) []uint {
	var ids []uint
	for pair := range m.friendships {
		if pair[0] == userID {
			ids = append(ids, pair[1])
		} else if pair[1] == userID {
			ids = append(ids, pair[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MockUserRepository is an in-memory implementation of
// UserRepositoryInterface for testing
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockUserRepository) Update(user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return errors.New("record not found")
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdatePreferences(userID uint, prefs models.NotificationPreferences) error {
	u, ok := m.users[userID]
	if !ok {
		return errors.New("record not found")
	}
	u.NotifyMessages = prefs.NotifyMessages
	u.NotifyFriendRequests = prefs.NotifyFriendRequests
	return nil
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var result []models.User
	for _, u := range m.users {
		if len(result) >= limit {
			break
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MockPushTokenRepository is an in-memory implementation of
// PushTokenRepositoryInterface for testing
type MockPushTokenRepository struct {
	tokens map[string]*models.PushToken
	nextID uint
}

func NewMockPushTokenRepository() *MockPushTokenRepository {
	return &MockPushTokenRepository{
		tokens: make(map[string]*models.PushToken),
		nextID: 1,
	}
}

func (m *MockPushTokenRepository) Upsert(token *models.PushToken) error {
	if existing, ok := m.tokens[token.Token]; ok {
		existing.UserID = token.UserID
		existing.Platform = token.Platform
		existing.UpdatedAt = time.Now()
		token.ID = existing.ID
		return nil
	}
	token.ID = m.nextID
	m.nextID++
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt
	copied := *token
	m.tokens[token.Token] = &copied
	return nil
}

func (m *MockPushTokenRepository) DeleteByUserAndToken(userID uint, token string) (int64, error) {
	if existing, ok := m.tokens[token]; ok && existing.UserID == userID {
		delete(m.tokens, token)
		return 1, nil
	}
	return 0, nil
}

func (m *MockPushTokenRepository) ListByUser(userID uint) ([]models.PushToken, error) {
	var result []models.PushToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *MockPushTokenRepository) ListForUsers(userIDs []uint) ([]models.PushToken, error) {
	want := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var result []models.PushToken
	for _, t := range m.tokens {
		if want[t.UserID] {
			result = append(result, *t)
		}
	}
	return result, nil
}

// MockRefreshTokenRepository is an in-memory implementation of
// RefreshTokenRepositoryInterface for testing
type MockRefreshTokenRepository struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{
		tokens: make(map[string]*models.RefreshToken),
		nextID: 1,
	}
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	if token.ID == 0 {
		token.ID = m.nextID
		m.nextID++
	}
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *MockRefreshTokenRepository) FindValidByHash(tokenHash string) (*models.RefreshToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || t.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("record not found")
	}
	return t, nil
}

func (m *MockRefreshTokenRepository) RevokeByHash(tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

// MockWaitlistRepository is an in-memory implementation of
// WaitlistRepositoryInterface for testing
type MockWaitlistRepository struct {
	entries map[uint]*models.WaitlistEntry
	nextID  uint
}

func NewMockWaitlistRepository() *MockWaitlistRepository {
	return &MockWaitlistRepository{
		entries: make(map[uint]*models.WaitlistEntry),
		nextID:  1,
	}
}

func (m *MockWaitlistRepository) Join(userID uint) error {
	if _, ok := m.entries[userID]; ok {
		return nil
	}
	m.entries[userID] = &models.WaitlistEntry{ID: m.nextID, UserID: userID, CreatedAt: time.Now()}
	m.nextID++
	return nil
}

func (m *MockWaitlistRepository) FindByUser(userID uint) (*models.WaitlistEntry, error) {
	if e, ok := m.entries[userID]; ok {
		return e, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockWaitlistRepository) Count() (int64, error) {
	return int64(len(m.entries)), nil
}

// MockFileStore records delete calls instead of talking to object storage
type MockFileStore struct {
	deleted []string
	failAll bool
}

func (m *MockFileStore) DeleteObject(_ context.Context, key string) error {
	if m.failAll {
		return errors.New("storage unavailable")
	}
	m.deleted = append(m.deleted, key)
	return nil
}

// MockPushClient records sends instead of calling the push gateway
type MockPushClient struct {
	sent [][]string
}

func (m *MockPushClient) Send(_ context.Context, tokens []string, _, _ string, _ map[string]string) error {
	m.sent = append(m.sent, tokens)
	return nil
}
