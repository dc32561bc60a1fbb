package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.NewNopLogger(), Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.NewNopLogger(), Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestServiceDesc_ListsAllMethods(t *testing.T) {
	desc := ServiceDesc()
	if desc.ServiceName != "gophcrm.v1.CRMService" {
		t.Fatalf("unexpected service name %q", desc.ServiceName)
	}

	want := []string{
		"ChangePassword", "CreateCustomer", "CreateRole", "CreateUser", "CustomerHistory",
		"DeleteCustomer", "DeleteRole", "DeleteTemplate", "DeleteUser", "EmailStats",
		"ExportEmailLogs", "GeneratePreview", "GetCustomer", "ListCustomers", "ListEmailLogs",
		"ListRoles", "ListTemplates", "ListUsers", "Login", "Logout", "Me", "Ping",
		"SaveTemplate", "SendBatch", "UpdateCustomer", "UpdateEmailStatus",
	}
	if len(desc.Methods) != len(want) {
		t.Fatalf("expected %d methods, got %d", len(want), len(desc.Methods))
	}
	for i, m := range desc.Methods {
		if m.MethodName != want[i] {
			t.Fatalf("method %d: expected %s, got %s", i, want[i], m.MethodName)
		}
	}
}
