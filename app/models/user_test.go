package models

import "testing"

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Maria Silva", "maria@example.com", "s3nh4forte")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Role != ROLE_USER {
		t.Fatalf("expected role %q, got %q", ROLE_USER, user.Role)
	}
	if user.Status != STATUS_ACTIVE {
		t.Fatalf("expected status %q, got %q", STATUS_ACTIVE, user.Status)
	}
	if user.Password == "s3nh4forte" {
		t.Fatalf("password must be stored hashed")
	}
	if !user.CheckPassword("s3nh4forte") {
		t.Fatalf("expected password to verify")
	}
	if user.CheckPassword("wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "short name", userName: "ab", email: "a@b.com", password: "s3nh4forte"},
		{name: "bad email", userName: "Maria Silva", email: "not-an-email", password: "s3nh4forte"},
		{name: "short password", userName: "Maria Silva", email: "a@b.com", password: "12345"},
	}

	for _, tt := range tests {
		if _, err := CreateUser(tt.userName, tt.email, tt.password); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}
