package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username, email string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}
	if email == "" {
		email = "test@example.com"
	}

	return &models.User{
		ID:                   id,
		Username:             username,
		Email:                email,
		PasswordHash:         "hashed_password_123",
		DisplayName:          "Test User",
		NotifyMessages:       true,
		NotifyFriendRequests: true,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
}

// CreateTestMessage creates a test message with default values
func (h *TestHelper) CreateTestMessage(id uint, senderID uint) *models.Message {
	if id == 0 {
		id = 1
	}
	if senderID == 0 {
		senderID = 1
	}

	return &models.Message{
		ID:        id,
		SenderID:  senderID,
		FileURL:   "https://cdn.example.com/whisps/1/test.jpg",
		FileKey:   "whisps/1/test.jpg",
		MimeType:  "image/jpeg",
		Thumbhash: "1QcSHQRnh493V4dIh4eXh1h4kJUI",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Sender: models.User{
			ID:       senderID,
			Username: "sender",
			Email:    "sender@example.com",
		},
	}
}

// CreateTestDelivery creates a delivery row for a message and recipient
func (h *TestHelper) CreateTestDelivery(id, messageID, recipientID uint) *models.MessageDelivery {
	if id == 0 {
		id = 1
	}
	return &models.MessageDelivery{
		ID:          id,
		MessageID:   messageID,
		RecipientID: recipientID,
		CreatedAt:   time.Now(),
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
	os.Setenv("PASSWORD_MIN_LENGTH", "10")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// AssertNotNil checks if a value is not nil
func (h *TestHelper) AssertNotNil(value interface{}, testName string) {
	if value == nil {
		h.t.Errorf("%s: expected non-nil value", testName)
	}
}
