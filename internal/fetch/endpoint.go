// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strings"

	"github.com/pdiddy/handbook-sync/pkg/types"
)

// BaseURL returns the scheme and host for cfg, without a trailing slash.
func BaseURL(cfg types.SyncConfig) string {
	if cfg.BaseURL != "" {
		return strings.TrimSuffix(cfg.BaseURL, "/")
	}
	host := "wordpress.org"
	if cfg.Subdomain != "" && cfg.Subdomain != types.NoSubdomain {
		host = cfg.Subdomain + "." + host
	}
	return "https://" + host
}

// Endpoint returns the collection URL for cfg, e.g.
// https://make.wordpress.org/core/wp-json/wp/v2/handbook.
func Endpoint(cfg types.SyncConfig) string {
	return BaseURL(cfg) + "/" + teamSegment(cfg.Team) + "wp-json/wp/v2/" + cfg.Handbook
}

// FallbackRoot returns the public URL prefix the collection's links are
// expected to share when no root item is present, e.g.
// https://make.wordpress.org/core/handbook/.
func FallbackRoot(cfg types.SyncConfig) string {
	return BaseURL(cfg) + "/" + teamSegment(cfg.Team) + cfg.Handbook + "/"
}

func teamSegment(team string) string {
	team = strings.Trim(team, "/")
	if team == "" {
		return ""
	}
	return team + "/"
}
