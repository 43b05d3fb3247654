package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.EvaluationsTotal == nil {
		t.Error("EvaluationsTotal is nil")
	}
	if m.EvaluationDurationSeconds == nil {
		t.Error("EvaluationDurationSeconds is nil")
	}
	if m.QualifyingMatches == nil {
		t.Error("QualifyingMatches is nil")
	}
	if m.APSScore == nil {
		t.Error("APSScore is nil")
	}
	if m.CatalogInstitutions == nil || m.CatalogPrograms == nil {
		t.Error("catalog gauges are nil")
	}
	if m.CatalogReloadsTotal == nil || m.CatalogReloadDurationSeconds == nil {
		t.Error("catalog reload metrics are nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected second registration on the same registry to panic")
		}
	}()
	New(registry)
}

func TestRecordEvaluation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordEvaluation("eligibility", "success", 0.002)
	m.RecordEvaluation("eligibility", "success", 0.003)
	m.RecordEvaluation("aps", "invalid", 0.0001)

	if got := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("eligibility", "success")); got != 2 {
		t.Errorf("eligibility/success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("aps", "invalid")); got != 1 {
		t.Errorf("aps/invalid = %v, want 1", got)
	}
}

func TestRecordReport(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordReport(32, 4, "bachelor", 2)
	m.RecordReport(18, 0, "higher_certificate", 0)
	m.RecordNSC("bachelor")

	if got := testutil.ToFloat64(m.NSCPassLevelsTotal.WithLabelValues("bachelor")); got != 2 {
		t.Errorf("bachelor = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UnrecognizedSubjectsTotal); got != 2 {
		t.Errorf("unrecognized = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.APSScore); got != 1 {
		t.Errorf("APSScore series = %d, want 1", got)
	}
}

func TestSetCatalogSize(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetCatalogSize("university", 4, 12)
	m.SetCatalogSize("university", 5, 13)
	m.SetCatalogSize("college", 2, 3)

	if got := testutil.ToFloat64(m.CatalogInstitutions.WithLabelValues("university")); got != 5 {
		t.Errorf("university institutions = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.CatalogPrograms.WithLabelValues("college")); got != 3 {
		t.Errorf("college programs = %v, want 3", got)
	}
}

func TestRecordCatalogReloadAndErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCatalogReload("success", 0.2)
	m.RecordCatalogReload("error", 0.01)
	m.RecordHTTPError("bad_request", "eligibility")
	m.RecordSingleflightDedup("catalog")

	if got := testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("bad_request", "eligibility")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SingleflightDedupTotal.WithLabelValues("catalog")); got != 1 {
		t.Errorf("dedup = %v, want 1", got)
	}
}

func TestRecordSyncAndRateLimiter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCatalogSync("unchanged")
	m.RecordCatalogSync("unchanged")
	m.RecordCatalogSync("updated")
	m.RecordRateLimiterDrop("client")
	m.SetRateLimiterClients(7)
	m.SetRateLimiterClients(3)

	if got := testutil.ToFloat64(m.CatalogSyncsTotal.WithLabelValues("unchanged")); got != 2 {
		t.Errorf("unchanged syncs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("client")); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterClients); got != 3 {
		t.Errorf("clients = %v, want 3", got)
	}
}

func TestRecordLogDrop(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordLogDrop("betterstack")
	m.RecordLogDrop("betterstack")

	if got := testutil.ToFloat64(m.LogRecordsDropped.WithLabelValues("betterstack")); got != 2 {
		t.Errorf("dropped log records = %v, want 2", got)
	}
}
