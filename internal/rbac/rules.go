package rbac

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleCustomer: {
		"quiz:play",
		"attempt:submit",
		"attempt:view-own",
		"attempt:retake",
		"user:view-own",
		"user:update-own",
		"user:change_password",
	},
	RoleAdmin: {
		"*", // everything
	},
}
