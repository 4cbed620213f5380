package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBootstrapBuiltinRolesRegistered(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:user":      true,
		"role:sub_agent": true,
		"role:agent":     true,
		"role:admin":     true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}
}

func TestEnforceRoleLeadSubmission(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	allow, err := svc.EnforceRole("sub_agent", "/api/v1/leads", "post")
	if err != nil {
		t.Fatalf("enforce sub_agent failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected sub_agent allowed to submit leads")
	}

	allow, err = svc.EnforceRole("user", "/api/v1/leads", "POST")
	if err != nil {
		t.Fatalf("enforce user failed: %v", err)
	}
	if allow {
		t.Fatalf("expected plain user denied lead submission")
	}
}

func TestEnforceRoleAgentInheritsSubAgent(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	allow, err := svc.EnforceRole("agent", "/api/v1/dashboard", "GET")
	if err != nil {
		t.Fatalf("enforce inherited dashboard failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected agent to inherit sub_agent dashboard access")
	}

	allow, err = svc.EnforceRole("agent", "/api/v1/agent/sub-agents/5/rate", "PUT")
	if err != nil {
		t.Fatalf("enforce agent rate update failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected agent allowed to update sub-agent rate")
	}

	allow, err = svc.EnforceRole("sub_agent", "/api/v1/agent/sub-agents", "GET")
	if err != nil {
		t.Fatalf("enforce sub_agent management failed: %v", err)
	}
	if allow {
		t.Fatalf("expected sub_agent denied agent management routes")
	}
}

func TestEnforceRoleAdminWildcard(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	allow, err := svc.EnforceRole("admin", "/api/v1/admin/payouts/12/pay", "POST")
	if err != nil {
		t.Fatalf("enforce admin failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected admin wildcard to cover payout payment")
	}

	allow, err = svc.EnforceRole("agent", "/api/v1/admin/leads", "GET")
	if err != nil {
		t.Fatalf("enforce agent on admin route failed: %v", err)
	}
	if allow {
		t.Fatalf("expected agent denied admin routes")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/leads/:id", want: "/admin/leads/:id"},
		{in: "/admin/leads/:id", want: "/admin/leads/:id"},
		{in: "admin/payouts", want: "/admin/payouts"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestGetRoleEffectivePoliciesIncludesInherited(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	policies, err := svc.GetRoleEffectivePolicies("agent")
	if err != nil {
		t.Fatalf("get effective policies failed: %v", err)
	}
	var hasOwn, hasInherited bool
	for _, p := range policies {
		if p.Object == "/agent/sub-agents" && p.Action == "GET" {
			hasOwn = true
		}
		if p.Object == "/leads" && p.Action == "POST" {
			hasInherited = true
		}
	}
	if !hasOwn {
		t.Fatalf("expected agent's own policy present, got=%v", policies)
	}
	if !hasInherited {
		t.Fatalf("expected inherited sub_agent policy present, got=%v", policies)
	}
}
