// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic        SecurityLevel = iota // No authentication
	SecurityAuthenticated                      // Any signed-in account
	SecurityUser                               // Signed in with role "user"
	SecurityAdmin                              // Signed in with role "admin"
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityPublic:
		return "public"
	case SecurityAuthenticated:
		return "authenticated"
	case SecurityUser:
		return "user"
	default:
		return "admin"
	}
}

// EndpointSecurityConfig maps "METHOD path-template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"POST /api/v1/auth/login": SecurityPublic,
	"GET /healthz":            SecurityPublic,

	// Catalogue - any signed-in account
	"GET /api/v1/equipment":              SecurityAuthenticated,
	"GET /api/v1/equipment/categories":   SecurityAuthenticated,
	"GET /api/v1/equipment/availability": SecurityAuthenticated,
	"GET /api/v1/equipment/{id}":         SecurityAuthenticated,

	// Self-service rentals
	"POST /api/v1/rentals":             SecurityUser,
	"GET /api/v1/rentals":              SecurityUser,
	"POST /api/v1/rentals/{id}/return": SecurityUser,
	"GET /api/v1/dashboard":            SecurityUser,

	// Administration
	"GET /api/v1/admin/dashboard":            SecurityAdmin,
	"POST /api/v1/admin/equipment":           SecurityAdmin,
	"PUT /api/v1/admin/equipment/{id}":       SecurityAdmin,
	"DELETE /api/v1/admin/equipment/{id}":    SecurityAdmin,
	"GET /api/v1/admin/users":                SecurityAdmin,
	"POST /api/v1/admin/users":               SecurityAdmin,
	"GET /api/v1/admin/users/{id}":           SecurityAdmin,
	"PUT /api/v1/admin/users/{id}":           SecurityAdmin,
	"DELETE /api/v1/admin/users/{id}":        SecurityAdmin,
	"GET /api/v1/admin/rentals":              SecurityAdmin,
	"POST /api/v1/admin/rentals/{id}/return": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a method and route template
func GetSecurityLevel(method, pathTemplate string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+pathTemplate]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
