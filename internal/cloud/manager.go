package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/cheynewallace/tabby"

	"github.com/hemantobora/auto-iops/internal"
	"github.com/hemantobora/auto-iops/internal/cloud/naming"
	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/prompts"
	"github.com/hemantobora/auto-iops/internal/reconcile"
	"github.com/hemantobora/auto-iops/internal/state"
	"github.com/hemantobora/auto-iops/internal/utils"
)

// DefaultTokenPreview is the --token-preview default. A width of 0 hides the
// preview entirely.
const DefaultTokenPreview = 20

// CLIContext holds CLI parameters for one run
type CLIContext struct {
	// Scope selection
	ResourceGroup string `json:"resource_group,omitempty"`
	AllGroups     bool   `json:"all_groups"`
	TargetServer  string `json:"target_server,omitempty"`
	Interactive   bool   `json:"interactive"`

	// Connection overrides
	Endpoint   string `json:"endpoint,omitempty"`
	APIVersion string `json:"api_version,omitempty"`

	// Display
	TokenPreview int  `json:"token_preview"`
	JSON         bool `json:"json"`

	// Report export (successful runs only)
	ReportFile          string `json:"report_file,omitempty"`
	ReportS3Bucket      string `json:"report_s3_bucket,omitempty"`
	AWSProfile          string `json:"aws_profile,omitempty"`
	ReportBlobAccount   string `json:"report_blob_account,omitempty"`
	ReportBlobContainer string `json:"report_blob_container,omitempty"`
}

// HasScope returns true if the scope was given on the command line
func (c *CLIContext) HasScope() bool {
	return c.AllGroups || c.ResourceGroup != ""
}

// Validate checks flag combinations
func (c *CLIContext) Validate() error {
	if c.AllGroups && c.ResourceGroup != "" {
		return fmt.Errorf("--all and --resource-group are mutually exclusive")
	}
	if c.TokenPreview < 0 {
		return &models.InputValidationError{
			InputType: "token preview",
			Value:     fmt.Sprint(c.TokenPreview),
			Expected:  "0 to hide the preview, or a positive number of characters",
			Cause:     fmt.Errorf("negative width"),
		}
	}
	if (c.ReportBlobAccount == "") != (c.ReportBlobContainer == "") {
		return fmt.Errorf("--report-blob-account and --report-blob-container must be used together")
	}
	return nil
}

// scope resolves the scope without prompting. ok is false when the user
// still has to choose.
func (c *CLIContext) scope() (models.Scope, bool) {
	switch {
	case c.ResourceGroup != "":
		return models.NamedResourceGroup(c.ResourceGroup), true
	case c.AllGroups || !c.Interactive:
		return models.AllResourceGroups(), true
	default:
		return models.Scope{}, false
	}
}

// ReconcileManager orchestrates an Auto IOPS run from CLI parameters
type ReconcileManager struct {
	auth        internal.AuthProvider
	factory     *Factory
	out         io.Writer
	now         func() time.Time
	selectScope func([]models.ResourceGroup) (models.Scope, error)
	askTarget   func() reconcile.TargetSelector
	stores      []state.ReportStore
	storesSet   bool
	progress    bool
}

// ManagerOption configures a ReconcileManager
type ManagerOption func(*ReconcileManager)

// WithManagerOutput sets the console writer
func WithManagerOutput(w io.Writer) ManagerOption {
	return func(m *ReconcileManager) { m.out = w }
}

// WithClock overrides time.Now for report timestamps
func WithClock(now func() time.Time) ManagerOption {
	return func(m *ReconcileManager) { m.now = now }
}

// WithScopeSelector replaces the interactive resource group prompt
func WithScopeSelector(fn func([]models.ResourceGroup) (models.Scope, error)) ManagerOption {
	return func(m *ReconcileManager) { m.selectScope = fn }
}

// WithTargetPrompt replaces the interactive per-group target prompt
func WithTargetPrompt(fn func() reconcile.TargetSelector) ManagerOption {
	return func(m *ReconcileManager) { m.askTarget = fn }
}

// WithReportStores replaces the stores built from CLI flags
func WithReportStores(stores ...state.ReportStore) ManagerOption {
	return func(m *ReconcileManager) {
		m.stores = stores
		m.storesSet = true
	}
}

// WithProgress shows a spinner during slow read-only calls. Only enable it
// when the output is a terminal.
func WithProgress(enabled bool) ManagerOption {
	return func(m *ReconcileManager) { m.progress = enabled }
}

// spin starts a spinner when progress display is on and returns its stop func
func (m *ReconcileManager) spin(message string) func() {
	if !m.progress {
		return func() {}
	}
	s := utils.NewSpinner(m.out, message)
	s.Start()
	return s.Stop
}

// NewReconcileManager creates a manager for the given credential source
func NewReconcileManager(auth internal.AuthProvider, options ...ManagerOption) *ReconcileManager {
	m := &ReconcileManager{
		auth:        auth,
		factory:     NewFactory(),
		out:         os.Stdout,
		now:         time.Now,
		selectScope: prompts.SelectScope,
		askTarget:   prompts.InteractiveTarget,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// session is the authenticated state shared by the commands
type session struct {
	provider internal.Provider
}

// authenticate resolves the subscription and token once per run
func (m *ReconcileManager) authenticate(ctx context.Context, cliContext *CLIContext) (*session, error) {
	subscriptionID, err := m.auth.SubscriptionID(ctx)
	if err != nil {
		return nil, asAuthError("subscription", err)
	}
	fmt.Fprintf(m.out, "🔑 Using subscription: %s\n", utils.MaskValue(subscriptionID, 4, 4))

	stop := m.spin("Acquiring access token...")
	token, err := m.auth.AccessToken(ctx)
	stop()
	if err != nil {
		return nil, asAuthError("token", err)
	}
	if cliContext.TokenPreview > 0 {
		fmt.Fprintf(m.out, "🔐 Access token: %s\n", utils.PreviewToken(token, cliContext.TokenPreview))
	} else {
		fmt.Fprintln(m.out, "🔐 Access token acquired")
	}

	provider, err := m.factory.CreateProvider(ctx, "azure",
		WithCredentials(subscriptionID, token),
		WithEndpoint(cliContext.Endpoint),
		WithAPIVersion(cliContext.APIVersion),
		WithOutput(m.out),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Azure provider: %w", err)
	}
	fmt.Fprintf(m.out, "☁️  Provider: %s\n", provider.GetProviderType())
	return &session{provider: provider}, nil
}

func asAuthError(step string, err error) error {
	var ae *models.AuthError
	if errors.As(err, &ae) {
		return err
	}
	return &models.AuthError{Step: step, Cause: err}
}

// Enable runs the reconciliation and prints the summary. Nothing is
// printed or exported for a run that aborts.
func (m *ReconcileManager) Enable(ctx context.Context, cliContext *CLIContext) (*models.ReconciliationResult, error) {
	if err := cliContext.Validate(); err != nil {
		return nil, err
	}
	fmt.Fprintln(m.out, "🚀 Auto IOPS reconciliation started")

	sess, err := m.authenticate(ctx, cliContext)
	if err != nil {
		return nil, err
	}

	scope, err := m.resolveScope(ctx, sess, cliContext)
	if err != nil {
		return nil, err
	}
	target := m.resolveTarget(cliContext)

	// Build stores before touching any server so bad export settings fail early
	stores, err := m.reportStores(ctx, cliContext)
	if err != nil {
		return nil, err
	}

	started := m.now()
	fmt.Fprintf(m.out, "🔍 Reconciling %s...\n", scope)
	result, err := reconcile.NewEngine(sess.provider, m.out).Run(ctx, scope, target)
	if err != nil {
		return nil, err
	}
	reconcile.RenderSummary(m.out, result)

	if len(stores) > 0 {
		report, err := m.newReport(sess, scope, cliContext.TargetServer, started, result)
		if err != nil {
			return nil, err
		}
		locations, err := state.SaveAll(ctx, report, stores...)
		for i, loc := range locations {
			fmt.Fprintf(m.out, "💾 Report saved to %s (%s)\n", loc, stores[i].GetProviderType())
		}
		if err != nil {
			return &result, fmt.Errorf("reconciliation finished but report export failed: %w", err)
		}
	}
	return &result, nil
}

func (m *ReconcileManager) resolveScope(ctx context.Context, sess *session, cliContext *CLIContext) (models.Scope, error) {
	if scope, ok := cliContext.scope(); ok {
		return scope, nil
	}

	groups, err := sess.provider.ListResourceGroups(ctx)
	if err != nil {
		var de *models.DiscoveryError
		if !errors.As(err, &de) {
			err = &models.DiscoveryError{Cause: err}
		}
		return models.Scope{}, err
	}
	fmt.Fprintln(m.out, "📦 Available resource groups:")
	for _, g := range groups {
		fmt.Fprintf(m.out, "  - %s\n", g.Name)
	}
	scope, err := m.selectScope(groups)
	if err != nil {
		return models.Scope{}, fmt.Errorf("resource group selection failed: %w", err)
	}
	return scope, nil
}

func (m *ReconcileManager) resolveTarget(cliContext *CLIContext) reconcile.TargetSelector {
	if cliContext.TargetServer != "" || !cliContext.Interactive {
		return reconcile.FixedTarget(cliContext.TargetServer)
	}
	return m.askTarget()
}

func (m *ReconcileManager) reportStores(ctx context.Context, cliContext *CLIContext) ([]state.ReportStore, error) {
	if m.storesSet {
		return m.stores, nil
	}
	var stores []state.ReportStore
	if cliContext.ReportFile != "" {
		stores = append(stores, state.NewFileStore(cliContext.ReportFile))
	}
	if cliContext.ReportS3Bucket != "" {
		s3Store, err := state.S3StoreWithProfile(ctx, cliContext.ReportS3Bucket, cliContext.AWSProfile, m.out)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s3Store)
	}
	if cliContext.ReportBlobAccount != "" {
		src, ok := m.auth.(interface{ Credential() azcore.TokenCredential })
		if !ok {
			return nil, fmt.Errorf("blob report export requires an Azure CLI login credential")
		}
		blobStore, err := state.BlobStoreWithCredential(cliContext.ReportBlobAccount, cliContext.ReportBlobContainer, src.Credential())
		if err != nil {
			return nil, err
		}
		stores = append(stores, blobStore)
	}
	return stores, nil
}

func (m *ReconcileManager) newReport(sess *session, scope models.Scope, target string, started time.Time, result models.ReconciliationResult) (*models.ReconciliationReport, error) {
	id, err := naming.NewDefaultNaming().NewReportID(started)
	if err != nil {
		return nil, err
	}
	return &models.ReconciliationReport{
		ID:             id,
		SubscriptionID: utils.MaskValue(sess.provider.GetSubscriptionID(), 4, 4),
		Scope:          scope,
		TargetServer:   target,
		StartedAt:      started.UTC(),
		FinishedAt:     m.now().UTC(),
		Result:         result,
	}, nil
}

// List prints every server in scope with its tier and Auto IOPS state
func (m *ReconcileManager) List(ctx context.Context, cliContext *CLIContext) ([]reconcile.GroupInventory, error) {
	if err := cliContext.Validate(); err != nil {
		return nil, err
	}
	sess, err := m.authenticate(ctx, cliContext)
	if err != nil {
		return nil, err
	}
	scope := models.AllResourceGroups()
	if cliContext.ResourceGroup != "" {
		scope = models.NamedResourceGroup(cliContext.ResourceGroup)
	}

	stop := m.spin(fmt.Sprintf("Discovering servers in %s...", scope))
	inventory, err := reconcile.NewEngine(sess.provider, io.Discard).Discover(ctx, scope)
	stop()
	if err != nil {
		return nil, err
	}

	if cliContext.JSON {
		data, err := utils.ToPrettyJSON(inventory)
		if err != nil {
			return nil, err
		}
		_, err = m.out.Write(data)
		return inventory, err
	}

	t := tabby.NewCustom(tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0))
	t.AddHeader("RESOURCE GROUP", "SERVER", "TIER", "AUTO IOPS", "ELIGIBLE")
	for _, gi := range inventory {
		if len(gi.Servers) == 0 {
			t.AddLine(gi.ResourceGroup, "-", "-", "-", "-")
			continue
		}
		for _, s := range gi.Servers {
			eligible := "no"
			if s.Tier.IsSupported() {
				eligible = "yes"
			}
			t.AddLine(gi.ResourceGroup, s.Name, string(s.Tier), s.StateLabel(), eligible)
		}
	}
	t.Print()
	return inventory, nil
}
