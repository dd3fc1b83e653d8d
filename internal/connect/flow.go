// Package connect drives the OAuth integration grant: provider choice,
// target-employee choice, authorization redirect, and the independent
// return-handling entry point.
package connect

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/browser"

	"github.com/crewdeck/crewctl/internal/errors"
	"github.com/crewdeck/crewctl/internal/log"
	"github.com/crewdeck/crewctl/internal/platform"
)

// State is the in-memory position of one connect attempt.
type State string

const (
	StateIdle             State = "idle"
	StateProviderSelected State = "provider_selected"
	StateEmployeeSelected State = "employee_selected"
	StateConnecting       State = "connecting"
)

// Opener navigates the browser to an authorization address. It runs only
// after the address has passed every guard check.
type Opener func(rawURL string) error

// Flow is the connect-attempt state machine. One Flow tracks at most one
// live attempt; Reset discards it. The browser redirect is a hard boundary:
// after navigation the attempt is abandoned and never resumed — the return
// leg goes through HandleReturn instead.
type Flow struct {
	client        *platform.Client
	logger        *log.Logger
	open          Opener
	redirectAfter string

	mu         sync.Mutex
	state      State
	attemptID  string
	provider   string
	employeeID string
	employees  []platform.Worker
	loadErr    error
	inFlight   bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithOpener replaces the browser launcher. Tests use this to observe
// navigation without opening anything.
func WithOpener(open Opener) Option {
	return func(f *Flow) {
		f.open = open
	}
}

// WithLogger sets the flow's logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithRedirectAfter sets the address the provider sends the browser back to
// once authorization completes.
func WithRedirectAfter(addr string) Option {
	return func(f *Flow) {
		f.redirectAfter = addr
	}
}

// NewFlow creates an idle connect flow.
func NewFlow(client *platform.Client, opts ...Option) *Flow {
	f := &Flow{
		client: client,
		logger: log.DefaultLogger(),
		open:   browser.OpenURL,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current position of the attempt.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset discards the current attempt and returns the flow to idle. Called on
// dialog open, close, and after a completed or abandoned attempt.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Flow) reset() {
	f.state = StateIdle
	f.attemptID = ""
	f.provider = ""
	f.employeeID = ""
	f.employees = nil
	f.loadErr = nil
	f.inFlight = false
}

// SelectProvider begins a new attempt for the given provider. Selecting a
// provider from any state starts over; prior selections are discarded.
func (f *Flow) SelectProvider(provider string) error {
	if provider == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no provider selected")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return errors.New(errors.ErrCodeConnectState, "an authorization request is already in flight")
	}

	f.reset()
	f.attemptID = uuid.New().String()
	f.provider = provider
	f.state = StateProviderSelected

	f.logger.Debug("connect attempt started",
		"attempt_id", f.attemptID,
		"provider", provider)
	return nil
}

// LoadEmployees fetches the workers eligible for connection. A fetch failure
// is a blocking error state: SelectEmployee and Begin refuse until a reload
// succeeds, so the dialog never offers a silently empty picker.
func (f *Flow) LoadEmployees(ctx context.Context) ([]platform.Worker, error) {
	f.mu.Lock()
	if f.state == StateIdle {
		f.mu.Unlock()
		return nil, errors.New(errors.ErrCodeConnectState, "select a provider first")
	}
	f.mu.Unlock()

	list, err := f.client.ListWorkers(ctx, platform.WorkerFilter{})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.employees = nil
		f.loadErr = errors.Wrap(errors.ErrCodeEmployeeListUnavailable,
			"unable to load employees for connection", err)
		return nil, f.loadErr
	}

	f.employees = list.Workers
	f.loadErr = nil
	return f.employees, nil
}

// BlockingError returns the error preventing the attempt from advancing, if
// any. Nil means the picker is usable.
func (f *Flow) BlockingError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadErr
}

// SelectEmployee records the target worker. It requires a successful
// employee-list load; an unknown id is rejected.
func (f *Flow) SelectEmployee(employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateProviderSelected && f.state != StateEmployeeSelected {
		return errors.New(errors.ErrCodeConnectState, "select a provider first")
	}
	if f.loadErr != nil {
		return f.loadErr
	}
	if f.employees == nil {
		return errors.New(errors.ErrCodeConnectState, "employee list not loaded")
	}

	found := false
	for _, w := range f.employees {
		if w.ID == employeeID {
			found = true
			break
		}
	}
	if !found {
		return errors.New(errors.ErrCodeInvalidInput, "unknown employee: "+employeeID)
	}

	f.employeeID = employeeID
	f.state = StateEmployeeSelected
	return nil
}

// Begin requests an authorization grant and, once the returned address passes
// every guard check, navigates the browser to it. Navigation abandons the
// in-memory attempt unconditionally; the flow is idle when Begin returns
// successfully. At most one authorization request is in flight per attempt.
func (f *Flow) Begin(ctx context.Context) (*platform.ConnectGrant, error) {
	f.mu.Lock()
	if f.state != StateEmployeeSelected {
		f.mu.Unlock()
		return nil, errors.New(errors.ErrCodeConnectState, "select a provider and employee first")
	}
	if f.inFlight {
		f.mu.Unlock()
		return nil, errors.New(errors.ErrCodeConnectState, "an authorization request is already in flight")
	}
	f.inFlight = true
	f.state = StateConnecting
	req := platform.ConnectRequest{
		Provider:      f.provider,
		EmployeeID:    f.employeeID,
		RedirectAfter: f.redirectAfter,
	}
	attemptID := f.attemptID
	f.mu.Unlock()

	grant, err := f.client.Connect(ctx, req)
	if err != nil {
		f.failAttempt()
		return nil, err
	}

	if err := GuardAuthorizationURL(grant.AuthorizationURL); err != nil {
		f.logger.WithError(err).Warn("rejected authorization address",
			"attempt_id", attemptID,
			"provider", grant.Provider)
		f.failAttempt()
		return nil, err
	}

	if err := f.open(grant.AuthorizationURL); err != nil {
		f.failAttempt()
		return nil, errors.Wrap(errors.ErrCodeNavigationFailed,
			"unable to open the authorization page", err)
	}

	f.logger.Info("browser navigated to authorization page",
		"attempt_id", attemptID,
		"provider", grant.Provider,
		"integration_id", grant.IntegrationID)

	// The redirect crossed out of process; nothing in-memory survives it.
	f.Reset()
	return grant, nil
}

// failAttempt returns a failed attempt to the employee-selected position so
// the user can retry without re-picking.
func (f *Flow) failAttempt() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	f.state = StateEmployeeSelected
}

// GuardAuthorizationURL validates an authorization address before any
// navigation. The checks run in order: empty, then unparsable or relative,
// then a scheme outside http/https. A compromised or defective server must
// not be able to direct the browser into a non-network scheme.
func GuardAuthorizationURL(raw string) error {
	if raw == "" {
		return errors.NewEmptyAuthorizationURLError()
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.NewMalformedAuthorizationURLError(raw, err)
	}
	if !parsed.IsAbs() {
		return errors.NewMalformedAuthorizationURLError(raw, nil)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.NewUnsafeAuthorizationURLError(parsed.Scheme)
	}
	return nil
}
