package reconcile

import (
	"context"
	"errors"

	"github.com/hemantobora/auto-iops/internal/models"
)

// fakeProvider is an in-memory subscription. EnableAutoIOScaling flips the
// stored state so repeated runs observe their own effect.
type fakeProvider struct {
	groups      []string
	servers     map[string][]*models.FlexibleServer
	notFound    map[string]bool
	listErr     error
	serversErr  map[string]error
	getErr      map[string]error
	enableErr   map[string]error
	getCalls    []string
	enableCalls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		servers:    map[string][]*models.FlexibleServer{},
		notFound:   map[string]bool{},
		serversErr: map[string]error{},
		getErr:     map[string]error{},
		enableErr:  map[string]error{},
	}
}

func (f *fakeProvider) addGroup(name string, servers ...models.FlexibleServer) {
	f.groups = append(f.groups, name)
	for i := range servers {
		s := servers[i]
		s.ResourceGroup = name
		f.servers[name] = append(f.servers[name], &s)
	}
}

func (f *fakeProvider) ListResourceGroups(context.Context) ([]models.ResourceGroup, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ResourceGroup, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, models.ResourceGroup{Name: g})
	}
	return out, nil
}

func (f *fakeProvider) ListServers(_ context.Context, group string) ([]models.ServerRef, error) {
	if err := f.serversErr[group]; err != nil {
		return nil, err
	}
	if f.notFound[group] {
		return []models.ServerRef{}, nil
	}
	refs := []models.ServerRef{}
	for _, s := range f.servers[group] {
		refs = append(refs, models.ServerRef{ResourceGroup: group, Name: s.Name})
	}
	return refs, nil
}

func (f *fakeProvider) find(group, name string) *models.FlexibleServer {
	for _, s := range f.servers[group] {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (f *fakeProvider) GetServer(_ context.Context, group, name string) (*models.FlexibleServer, error) {
	f.getCalls = append(f.getCalls, group+"/"+name)
	if err := f.getErr[name]; err != nil {
		return nil, err
	}
	s := f.find(group, name)
	if s == nil {
		return nil, &models.ConfigFetchError{ResourceGroup: group, Server: name, Cause: &models.APIError{StatusCode: 404, Status: "404 Not Found"}}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeProvider) EnableAutoIOScaling(_ context.Context, group, name string) error {
	f.enableCalls = append(f.enableCalls, group+"/"+name)
	if err := f.enableErr[name]; err != nil {
		return err
	}
	s := f.find(group, name)
	if s == nil {
		return errors.New("no such server")
	}
	s.AutoIOScaling = models.AutoIOScalingEnabled
	return nil
}

func (f *fakeProvider) GetProviderType() string   { return "fake" }
func (f *fakeProvider) GetSubscriptionID() string { return "sub" }
