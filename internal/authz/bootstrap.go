package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// 角色与 principal 表的 role 字段一一对应，启动时写入 Casbin
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "user",
			Policies: []Policy{
				{Object: "/auth/me", Action: "GET"},
				{Object: "/auth/password", Action: "PUT"},
			},
			Immutable: true,
		},
		{
			Role:     "sub_agent",
			Inherits: []string{"user"},
			Policies: []Policy{
				{Object: "/leads", Action: "GET"},
				{Object: "/leads", Action: "POST"},
				{Object: "/leads/:id", Action: "GET"},
				{Object: "/payouts", Action: "GET"},
				{Object: "/payouts/statistics", Action: "GET"},
				{Object: "/dashboard", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "agent",
			Inherits: []string{"sub_agent"},
			Policies: []Policy{
				{Object: "/agent/sub-agents", Action: "GET"},
				{Object: "/agent/sub-agents/stats", Action: "GET"},
				{Object: "/agent/sub-agents/:id/rate", Action: "PUT"},
				{Object: "/agent/sub-agents/:id/active", Action: "PUT"},
			},
			Immutable: true,
		},
		{
			Role:     "admin",
			Inherits: []string{"user"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
