package fakecompanyrepo

import (
	"context"
	"sync"

	"github.com/attendly/go-workforce-server/companies"
)

var _ companies.Repo = (*FakeCompanyRepo)(nil)

type FakeCompanyRepo struct {
	companies map[string]*companies.Company
	lock      sync.RWMutex
}

func NewFakeCompanyRepo() *FakeCompanyRepo {
	return &FakeCompanyRepo{
		companies: make(map[string]*companies.Company),
	}
}

func (cr *FakeCompanyRepo) Upsert(company *companies.Company) {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	clone := *company
	cr.companies[company.ID] = &clone
}

func (cr *FakeCompanyRepo) Remove(id string) {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	delete(cr.companies, id)
}

func (cr *FakeCompanyRepo) GetByID(_ context.Context, id string) (*companies.Company, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	company, ok := cr.companies[id]
	if !ok {
		return nil, companies.ErrNotFound
	}
	clone := *company
	return &clone, nil
}
