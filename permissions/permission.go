package permissions

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission guards one route pattern. Public routes set Skip. Otherwise the caller's
// role must be listed in Permissions, and an empty list admits any authenticated caller.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

func (p Permission) Allows(role string) bool {
	return p.Skip || len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func routeKey(path, method string) string {
	return strings.ToUpper(method) + " " + strings.TrimSuffix(path, "/")
}

// Parse decodes a permission table and indexes it by method and route pattern.
func Parse(raw []byte) (*PermissionData, error) {
	var data PermissionData

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err //nolint:wrapcheck
	}

	data.index = make(map[string]Permission, len(data.Endpoints))
	for _, endpoint := range data.Endpoints {
		data.index[routeKey(endpoint.Path, endpoint.Method)] = endpoint
	}

	return &data, nil
}

// Lookup finds the entry for a route pattern. Trailing slashes are ignored.
func (r *PermissionData) Lookup(path, method string) (Permission, bool) {
	if r == nil {
		return Permission{}, false
	}

	permission, ok := r.index[routeKey(path, method)]

	return permission, ok
}

// Public reports whether a route is reachable without a token.
func (r *PermissionData) Public(path, method string) bool {
	if method == http.MethodOptions {
		return true
	}

	permission, _ := r.Lookup(path, method)

	return permission.Skip
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return permissions
}
