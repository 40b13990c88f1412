package internaldefs

import "github.com/coursedesk/sessiongate"

type CounterDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: sessiongate.MetricRehydrateRestored, Name: "sessiongate_rehydrate_restored_total", Help: "Persisted sessions restored at startup."},
	{ID: sessiongate.MetricRehydrateRejected, Name: "sessiongate_rehydrate_rejected_total", Help: "Persisted sessions discarded at startup."},
	{ID: sessiongate.MetricRehydrateEmpty, Name: "sessiongate_rehydrate_empty_total", Help: "Startups with no persisted session."},
	{ID: sessiongate.MetricLoginSuccess, Name: "sessiongate_login_success_total", Help: "Successful logins."},
	{ID: sessiongate.MetricLoginFailure, Name: "sessiongate_login_failure_total", Help: "Failed logins."},
	{ID: sessiongate.MetricLogout, Name: "sessiongate_logout_total", Help: "Completed logouts."},
	{ID: sessiongate.MetricProfileUpdated, Name: "sessiongate_profile_updated_total", Help: "Profile replacements."},
	{ID: sessiongate.MetricAccessAllowed, Name: "sessiongate_access_allowed_total", Help: "Route guard decisions that allowed access."},
	{ID: sessiongate.MetricAccessDenied, Name: "sessiongate_access_denied_total", Help: "Route guard decisions that denied access."},
	{ID: sessiongate.MetricAccessDeferred, Name: "sessiongate_access_deferred_total", Help: "Route guard decisions deferred while loading."},
	{ID: sessiongate.MetricStoreFailure, Name: "sessiongate_store_failure_total", Help: "Failed reads or writes of the persisted session."},
}

var HistogramDefs = []HistogramDef{
	{ID: sessiongate.MetricLoginLatency, Name: "sessiongate_login_latency_seconds", Help: "Login call latency."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const (
	AuditDroppedName = "sessiongate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the upper bounds in seconds of the first seven buckets. The eighth
// bucket is +Inf.
var HistogramBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that publish one
// instrument per bucket.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
