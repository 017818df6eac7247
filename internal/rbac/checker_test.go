package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	if !c.Has(RoleCustomer, "attempt:submit") {
		t.Error("customer should submit attempts")
	}
	if c.Has(RoleCustomer, "quiz:create") {
		t.Error("customer must not author quizzes")
	}
	if !c.Has(RoleAdmin, "quiz:create") {
		t.Error("admin wildcard should cover everything")
	}
	if c.Has("unknown-role", "attempt:submit") {
		t.Error("unknown role has no permissions")
	}
}

func TestWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"attempt:*"}})
	if !c.Has("grader", "attempt:view-own") {
		t.Error("attempt:* should cover attempt:view-own")
	}
	if c.Has("grader", "quiz:play") {
		t.Error("attempt:* must not cover quiz:play")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any(RoleCustomer, "quiz:create", "attempt:submit") {
		t.Error("Any should pass when one permission matches")
	}
	if c.Any(RoleCustomer, "quiz:create", "quiz:delete") {
		t.Error("Any should fail when none match")
	}
}
