package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/crewdeck/crewctl/internal/connect"
	"github.com/crewdeck/crewctl/internal/platform"
)

// RunConnectDialog walks the user through one connect attempt: provider
// choice, employee choice, then the authorization redirect. Closing the
// dialog at any step resets the flow.
func RunConnectDialog(ctx context.Context, flow *connect.Flow, providers []platform.ProviderInfo) (*platform.ConnectGrant, error) {
	flow.Reset()
	defer func() {
		if flow.State() != connect.StateIdle {
			flow.Reset()
		}
	}()

	provider, err := promptForProvider(providers)
	if err != nil {
		return nil, err
	}
	if err := flow.SelectProvider(provider); err != nil {
		return nil, err
	}

	employees, err := flow.LoadEmployees(ctx)
	if err != nil {
		return nil, err
	}

	employeeID, err := promptForEmployee(employees)
	if err != nil {
		return nil, err
	}
	if err := flow.SelectEmployee(employeeID); err != nil {
		return nil, err
	}

	confirmed, err := promptForAuthorization(provider)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		flow.Reset()
		return nil, nil
	}

	return flow.Begin(ctx)
}

func promptForProvider(providers []platform.ProviderInfo) (string, error) {
	options := make([]huh.Option[string], 0, len(providers))
	for _, p := range providers {
		if !p.Available {
			continue
		}
		label := fmt.Sprintf("%s (%d connected)", p.DisplayName, p.ConnectedEmployees)
		options = append(options, huh.NewOption(label, p.Provider))
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no providers available for this tenant")
	}

	var selected string
	selectField := huh.NewSelect[string]().
		Title("Which integration do you want to connect?").
		Options(options...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(selectField))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

func promptForEmployee(employees []platform.Worker) (string, error) {
	if len(employees) == 0 {
		return "", fmt.Errorf("no employees available to connect")
	}

	options := make([]huh.Option[string], len(employees))
	for i, w := range employees {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", w.Name, w.Role), w.ID)
	}

	var selected string
	selectField := huh.NewSelect[string]().
		Title("Which worker should use this integration?").
		Options(options...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(selectField))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

func promptForAuthorization(provider string) (bool, error) {
	var confirmed bool = true

	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Open your browser to authorize %s?", provider)).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
