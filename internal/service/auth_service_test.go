package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("register returns user and token", func(t *testing.T) {
		resp, err := e.auth.Register(ctx, connect.NewRequest(&RegisterRequest{
			Email: "alice@example.com", Name: "Alice", Password: "correct horse",
		}))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Msg.User.Email != "alice@example.com" {
			t.Errorf("Email = %s", resp.Msg.User.Email)
		}
		if resp.Msg.Token == "" {
			t.Error("Expected a session token")
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := e.auth.Register(ctx, connect.NewRequest(&RegisterRequest{
			Email: "alice@example.com", Name: "Alice again", Password: "correct horse",
		}))
		wantCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		_, err := e.auth.Register(ctx, connect.NewRequest(&RegisterRequest{
			Email: "bob@example.com", Name: "Bob", Password: "short",
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("login with the right password", func(t *testing.T) {
		resp, err := e.auth.Login(ctx, connect.NewRequest(&LoginRequest{
			Email: "alice@example.com", Password: "correct horse",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.Token == "" {
			t.Error("Expected a session token")
		}
	})

	t.Run("login with the wrong password", func(t *testing.T) {
		_, err := e.auth.Login(ctx, connect.NewRequest(&LoginRequest{
			Email: "alice@example.com", Password: "wrong horse",
		}))
		wantCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("login for an unknown email", func(t *testing.T) {
		_, err := e.auth.Login(ctx, connect.NewRequest(&LoginRequest{
			Email: "nobody@example.com", Password: "correct horse",
		}))
		wantCode(t, err, connect.CodeUnauthenticated)
	})
}
