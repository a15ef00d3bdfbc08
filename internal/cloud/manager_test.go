package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hemantobora/auto-iops/internal/cloud/azure"
	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/reconcile"
	"github.com/hemantobora/auto-iops/internal/state"
)

const testSubscription = "12345678-aaaa-bbbb-cccc-1234567890ab"

// fakeARM serves a tiny subscription: rg-a holds one eligible and one
// burstable server, rg-b has no MySQL provider registered.
type fakeARM struct {
	mu      sync.Mutex
	enabled map[string]bool
	patches []string
	failGet bool
}

func (f *fakeARM) handler(t *testing.T) http.HandlerFunc {
	servers := map[string]string{
		"db-gp":    "GeneralPurpose",
		"db-burst": "Burstable",
	}
	base := "/subscriptions/" + testSubscription
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == base+"/resourcegroups":
			json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]string{{"name": "rg-a"}, {"name": "rg-b"}},
			})
		case r.URL.Path == base+"/resourceGroups/rg-b/providers/Microsoft.DBforMySQL/flexibleServers":
			http.Error(w, `{"error":{"code":"ResourceGroupNotFound"}}`, http.StatusNotFound)
		case r.URL.Path == base+"/resourceGroups/rg-a/providers/Microsoft.DBforMySQL/flexibleServers":
			json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]string{{"name": "db-gp"}, {"name": "db-burst"}},
			})
		case strings.HasPrefix(r.URL.Path, base+"/resourceGroups/rg-a/providers/Microsoft.DBforMySQL/flexibleServers/"):
			name := filepath.Base(r.URL.Path)
			tier, ok := servers[name]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if r.Method == http.MethodPatch {
				f.patches = append(f.patches, name)
				f.enabled[name] = true
				w.WriteHeader(http.StatusAccepted)
				return
			}
			if f.failGet {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			autoIO := "Disabled"
			if f.enabled[name] {
				autoIO = "Enabled"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"name":       name,
				"sku":        map[string]string{"tier": tier},
				"properties": map[string]any{"storage": map[string]string{"autoIoScaling": autoIO}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.Error(w, "unexpected", http.StatusBadRequest)
		}
	}
}

func newTestManager(t *testing.T, arm *fakeARM, options ...ManagerOption) (*ReconcileManager, *CLIContext, *bytes.Buffer) {
	t.Helper()
	if arm.enabled == nil {
		arm.enabled = map[string]bool{}
	}
	srv := httptest.NewServer(arm.handler(t))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	clock := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	opts := append([]ManagerOption{
		WithManagerOutput(&out),
		WithClock(func() time.Time { return clock }),
		WithScopeSelector(func([]models.ResourceGroup) (models.Scope, error) {
			t.Error("scope prompt should not be used")
			return models.Scope{}, errors.New("unexpected prompt")
		}),
	}, options...)
	m := NewReconcileManager(azure.StaticAuth{Subscription: testSubscription, Token: "eyJ0eXAiOiJKV1QiLCJhbGciOiJSUzI1NiJ9.payload"}, opts...)

	cliContext := &CLIContext{Endpoint: srv.URL}
	return m, cliContext, &out
}

func TestCLIContextValidate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     CLIContext
		wantErr bool
	}{
		{name: "empty", ctx: CLIContext{}},
		{name: "all and group", ctx: CLIContext{AllGroups: true, ResourceGroup: "rg"}, wantErr: true},
		{name: "negative preview", ctx: CLIContext{TokenPreview: -1}, wantErr: true},
		{name: "blob account only", ctx: CLIContext{ReportBlobAccount: "acct"}, wantErr: true},
		{name: "blob pair", ctx: CLIContext{ReportBlobAccount: "acct", ReportBlobContainer: "reports"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnableAllGroups(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, out := newTestManager(t, arm)
	cliContext.AllGroups = true

	result, err := m.Enable(context.Background(), cliContext)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if got := result.UpdatedNames(); len(got) != 1 || got[0] != "db-gp" {
		t.Errorf("updated = %v", got)
	}
	if len(result.Ineligible) != 1 || result.Ineligible[0].Name != "db-burst" {
		t.Errorf("ineligible = %#v", result.Ineligible)
	}
	if len(arm.patches) != 1 {
		t.Errorf("patches = %v", arm.patches)
	}

	console := out.String()
	if strings.Contains(console, testSubscription) {
		t.Error("subscription id printed unmasked")
	}
	if !strings.Contains(console, "1234") || !strings.Contains(console, "90ab") {
		t.Errorf("masked subscription missing from output:\n%s", console)
	}
	if strings.Contains(console, "payload") {
		t.Error("token tail leaked into output")
	}
	if !strings.Contains(console, "No MySQL flexible servers found in resource group: rg-b") {
		t.Errorf("expected rg-b skip line:\n%s", console)
	}
}

func TestTokenPreviewWidth(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		wantVisible bool
	}{
		{name: "hidden", width: 0},
		{name: "default", width: DefaultTokenPreview, wantVisible: true},
		{name: "narrow", width: 12, wantVisible: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cliContext, out := newTestManager(t, &fakeARM{})
			cliContext.ResourceGroup = "rg-b"
			cliContext.TokenPreview = tt.width

			if _, err := m.Enable(context.Background(), cliContext); err != nil {
				t.Fatalf("enable: %v", err)
			}
			console := out.String()
			if got := strings.Contains(console, "eyJ0"); got != tt.wantVisible {
				t.Errorf("token prefix visible = %v, want %v:\n%s", got, tt.wantVisible, console)
			}
			if !tt.wantVisible && !strings.Contains(console, "Access token acquired") {
				t.Errorf("expected hidden-preview line:\n%s", console)
			}
		})
	}
}

func TestEnableIsIdempotent(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, _ := newTestManager(t, arm)
	cliContext.AllGroups = true

	if _, err := m.Enable(context.Background(), cliContext); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := m.Enable(context.Background(), cliContext)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Updated) != 0 || len(second.AlreadyEnabled) != 1 {
		t.Errorf("second run result = %#v", second)
	}
	if len(arm.patches) != 1 {
		t.Errorf("expected exactly one PATCH across runs, got %v", arm.patches)
	}
}

func TestEnableNonInteractiveDefaultsToAllGroups(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, out := newTestManager(t, arm)

	if _, err := m.Enable(context.Background(), cliContext); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !strings.Contains(out.String(), "all resource groups") {
		t.Errorf("expected all-groups scope:\n%s", out.String())
	}
}

func TestEnableInteractiveUsesPrompts(t *testing.T) {
	arm := &fakeARM{}
	var offered []string
	m, cliContext, out := newTestManager(t, arm,
		WithScopeSelector(func(groups []models.ResourceGroup) (models.Scope, error) {
			for _, g := range groups {
				offered = append(offered, g.Name)
			}
			return models.NamedResourceGroup("rg-a"), nil
		}),
		WithTargetPrompt(func() reconcile.TargetSelector {
			return reconcile.FixedTarget("DB-BURST")
		}),
	)
	cliContext.Interactive = true

	result, err := m.Enable(context.Background(), cliContext)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if strings.Join(offered, ",") != "rg-a,rg-b" {
		t.Errorf("offered groups = %v", offered)
	}
	if !strings.Contains(out.String(), "Available resource groups") {
		t.Error("expected group listing before prompt")
	}
	if result.Total() != 1 || len(result.Ineligible) != 1 {
		t.Errorf("target filter not applied: %#v", result)
	}
	if len(arm.patches) != 0 {
		t.Errorf("unexpected patches %v", arm.patches)
	}
}

func TestEnableSavesReportOnSuccess(t *testing.T) {
	dir := t.TempDir()
	arm := &fakeARM{}
	m, cliContext, out := newTestManager(t, arm)
	cliContext.ResourceGroup = "rg-a"
	cliContext.ReportFile = dir

	if _, err := m.Enable(context.Background(), cliContext); err != nil {
		t.Fatalf("enable: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one report file, got %v (%v)", entries, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	var report models.ReconciliationReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SubscriptionID == testSubscription {
		t.Error("report stores an unmasked subscription id")
	}
	if report.Scope != models.NamedResourceGroup("rg-a") {
		t.Errorf("scope = %#v", report.Scope)
	}
	if !strings.HasPrefix(report.ID, "20260304T050607Z-") {
		t.Errorf("id = %q", report.ID)
	}
	if !strings.Contains(out.String(), "Report saved to") {
		t.Error("expected save confirmation")
	}
}

type recordingStore struct {
	saved int
}

func (r *recordingStore) SaveReport(context.Context, *models.ReconciliationReport) (string, error) {
	r.saved++
	return "memory://report", nil
}

func (r *recordingStore) GetProviderType() string { return "memory" }

func TestEnableAbortsWithoutSummaryOrReport(t *testing.T) {
	arm := &fakeARM{failGet: true}
	store := &recordingStore{}
	m, cliContext, out := newTestManager(t, arm, WithReportStores(store))
	cliContext.AllGroups = true

	result, err := m.Enable(context.Background(), cliContext)
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if result != nil {
		t.Errorf("expected no partial result, got %#v", result)
	}
	var cfe *models.ConfigFetchError
	if !errors.As(err, &cfe) {
		t.Errorf("expected ConfigFetchError, got %v", err)
	}
	if strings.Contains(out.String(), "Summary") {
		t.Error("summary printed for an aborted run")
	}
	if store.saved != 0 {
		t.Error("report saved for an aborted run")
	}
}

func TestEnableAuthFailure(t *testing.T) {
	m := NewReconcileManager(azure.StaticAuth{}, WithManagerOutput(&bytes.Buffer{}))
	_, err := m.Enable(context.Background(), &CLIContext{AllGroups: true})
	var ae *models.AuthError
	if !errors.As(err, &ae) || ae.Step != "subscription" {
		t.Fatalf("expected subscription AuthError, got %v", err)
	}
}

func TestEnableBlobExportNeedsCLICredential(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, _ := newTestManager(t, arm)
	cliContext.AllGroups = true
	cliContext.ReportBlobAccount = "acct"
	cliContext.ReportBlobContainer = "reports"

	if _, err := m.Enable(context.Background(), cliContext); err == nil {
		t.Fatal("expected error for blob export with a static token")
	}
	if len(arm.patches) != 0 {
		t.Error("servers modified before export settings were rejected")
	}
}

func TestListTable(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, out := newTestManager(t, arm)

	inventory, err := m.List(context.Background(), cliContext)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inventory) != 2 {
		t.Fatalf("inventory = %#v", inventory)
	}
	console := out.String()
	for _, want := range []string{"RESOURCE GROUP", "db-gp", "GeneralPurpose", "Burstable", "rg-b"} {
		if !strings.Contains(console, want) {
			t.Errorf("missing %q in:\n%s", want, console)
		}
	}
	if len(arm.patches) != 0 {
		t.Error("list must not modify servers")
	}
}

func TestListJSON(t *testing.T) {
	arm := &fakeARM{}
	m, cliContext, out := newTestManager(t, arm)
	cliContext.ResourceGroup = "rg-a"
	cliContext.JSON = true

	if _, err := m.List(context.Background(), cliContext); err != nil {
		t.Fatalf("list: %v", err)
	}
	console := out.String()
	start := strings.Index(console, "[")
	if start < 0 {
		t.Fatalf("no JSON in output:\n%s", console)
	}
	var inventory []reconcile.GroupInventory
	if err := json.Unmarshal([]byte(console[start:]), &inventory); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(inventory) != 1 || len(inventory[0].Servers) != 2 {
		t.Errorf("inventory = %#v", inventory)
	}
}

var _ state.ReportStore = (*recordingStore)(nil)
