package service

import "testing"

func TestWaitlistJoinIdempotent(t *testing.T) {
	repo := NewMockWaitlistRepository()
	svc := NewWaitlistService(repo)

	if err := svc.Join(1); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	// Joining again changes nothing.
	if err := svc.Join(1); err != nil {
		t.Fatalf("repeat Join() error = %v", err)
	}
	if err := svc.Join(2); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	status, err := svc.Status(1)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.Joined {
		t.Error("Joined = false, want true")
	}
	if status.Total != 2 {
		t.Errorf("Total = %d, want 2", status.Total)
	}
}

func TestWaitlistStatusNotJoined(t *testing.T) {
	svc := NewWaitlistService(NewMockWaitlistRepository())

	status, err := svc.Status(7)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Joined {
		t.Error("Joined = true for a user who never joined")
	}
	if status.Total != 0 {
		t.Errorf("Total = %d, want 0", status.Total)
	}
}
