// Package prompts collects run parameters interactively when they were not
// given on the command line.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/reconcile"
)

// AllGroupsOption is the select entry for the whole-subscription scope
const AllGroupsOption = "All resource groups"

// scopeOptions lists the select entries in discovery order
func scopeOptions(groups []models.ResourceGroup) []string {
	options := make([]string, 0, len(groups)+1)
	options = append(options, AllGroupsOption)
	for _, g := range groups {
		options = append(options, g.Name)
	}
	return options
}

// scopeFromAnswer maps a select answer back to a scope
func scopeFromAnswer(answer string) models.Scope {
	if answer == AllGroupsOption {
		return models.AllResourceGroups()
	}
	return models.NamedResourceGroup(answer)
}

// SelectScope asks which resource group to reconcile
func SelectScope(groups []models.ResourceGroup) (models.Scope, error) {
	if len(groups) == 0 {
		return models.Scope{}, fmt.Errorf("no resource groups found in subscription")
	}
	var answer string
	if err := survey.AskOne(&survey.Select{
		Message:  "Select the resource group to reconcile:",
		Options:  scopeOptions(groups),
		Default:  AllGroupsOption,
		PageSize: 15,
	}, &answer); err != nil {
		return models.Scope{}, err
	}
	return scopeFromAnswer(answer), nil
}

// AskTargetServer asks for an optional server name within a resource group
func AskTargetServer(resourceGroup string) (string, error) {
	var target string
	if err := survey.AskOne(&survey.Input{
		Message: fmt.Sprintf("Enter a specific server name in %s (or press Enter to apply to all):", resourceGroup),
	}, &target); err != nil {
		return "", err
	}
	return strings.TrimSpace(target), nil
}

// InteractiveTarget prompts for a target server once per resource group
func InteractiveTarget() reconcile.TargetSelector {
	return reconcile.TargetFunc(func(_ context.Context, resourceGroup string, _ []models.ServerRef) (string, error) {
		return AskTargetServer(resourceGroup)
	})
}
