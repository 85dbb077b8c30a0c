// Package reports builds the dashboard's report payloads: window load from
// the database, then the shared in-memory pipeline (scope, filter,
// aggregate, paginate), with an optional redis cache in front.
package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/reporting"
	"bitbucket.org/vetadata/iga_backend/utils"
)

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	if !config.ReportCacheEnabled() {
		return false, nil
	}
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any) {
	if !config.ReportCacheEnabled() {
		return
	}
	if err := config.SetRedisObject(key, obj, config.ReportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "reports", "cacheSet", key, nil, err)
	}
}

// cacheKey folds the viewer's scope into the key so cached pages never leak
// across scopes.
func cacheKey(report string, scope reporting.Scope, parts ...string) string {
	return fmt.Sprintf("Report:%s:%s:%s:%s:%s",
		report, scope.Level, scope.Centre, scope.Zone, strings.Join(parts, ":"))
}

// scopeFromContext derives the viewer's authorization boundary from the
// session claims.
func scopeFromContext(ctx context.Context) reporting.Scope {
	userType, _ := utils.GetUserTypeFromContext(ctx)
	centre, _ := utils.GetCentreNameFromContext(ctx)
	zone, _ := utils.GetZoneNameFromContext(ctx)

	switch reporting.ScopeLevel(userType) {
	case reporting.ScopeCentre:
		return reporting.Scope{Level: reporting.ScopeCentre, Centre: centre}
	case reporting.ScopeZone:
		return reporting.Scope{Level: reporting.ScopeZone, Zone: zone}
	default:
		return reporting.Scope{Level: reporting.ScopeHQ}
	}
}
