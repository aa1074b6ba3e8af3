package userctx

import "context"

// Context key type
type contextKey string

const (
	userEmailKey contextKey = "user_email"
	userNameKey  contextKey = "user_name"
	userRolesKey contextKey = "user_roles"
)

// SetUserEmail adds the user email to the request context
func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail retrieves the user email from the request context
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(userEmailKey).(string)
	if !ok {
		return "anonymous"
	}
	return email
}

// SetUserName adds the display name to the request context
func SetUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameKey, name)
}

// GetUserName retrieves the display name from the request context
func GetUserName(ctx context.Context) string {
	name, ok := ctx.Value(userNameKey).(string)
	if !ok {
		return ""
	}
	return name
}

// SetUserRoles adds the role set to the request context
func SetUserRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, userRolesKey, roles)
}

// GetUserRoles retrieves the role set from the request context
func GetUserRoles(ctx context.Context) []string {
	roles, ok := ctx.Value(userRolesKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

// HasRole reports whether the context user holds the named role
func HasRole(ctx context.Context, role string) bool {
	for _, r := range GetUserRoles(ctx) {
		if r == role {
			return true
		}
	}
	return false
}
