package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-intake/internal/model"
)

type fakeReferences struct {
	companies    []model.Company
	customers    []model.Customer
	companiesErr error
	holdCompany  chan struct{}
}

func (f *fakeReferences) ListInsuranceCompanies(context.Context, string) ([]model.Company, error) {
	if f.holdCompany != nil {
		<-f.holdCompany
	}
	return f.companies, f.companiesErr
}

func (f *fakeReferences) ListCustomers(context.Context, string) ([]model.Customer, error) {
	return f.customers, nil
}

func TestLoadReferenceData(t *testing.T) {
	refs := &fakeReferences{
		companies: []model.Company{{ID: "co-3", Name: "Star Health"}},
		customers: []model.Customer{{ID: "cust-7", Name: "Asha Rao", Mobile: "9876543210"}},
	}
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{References: refs})
	s.LoadReferenceData(context.Background())

	data := s.ReferenceData()
	assert.False(t, data.Companies.Loading)
	assert.Equal(t, refs.companies, data.Companies.Items)
	assert.Equal(t, refs.customers, data.Customers.Items)

	name, ok := s.CompanyName("co-3")
	assert.True(t, ok)
	assert.Equal(t, "Star Health", name)
	name, ok = s.CustomerName("cust-7")
	assert.True(t, ok)
	assert.Equal(t, "Asha Rao", name)
	_, ok = s.CustomerName("nobody")
	assert.False(t, ok)
}

func TestReferenceFailureDegradesOneList(t *testing.T) {
	refs := &fakeReferences{
		companiesErr: errors.New("503"),
		customers:    []model.Customer{{ID: "cust-7", Name: "Asha Rao"}},
	}
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{References: refs})
	s.LoadReferenceData(context.Background())

	data := s.ReferenceData()
	assert.Equal(t, "Unable to load insurance companies", data.Companies.Error)
	assert.Empty(t, data.Companies.Items)
	assert.Len(t, data.Customers.Items, 1)

	// The wizard keeps working around the failed list.
	require.NoError(t, s.SetField("policyHolderName", "Asha Rao"))
}

func TestReferenceDataArrivingAfterCloseIsDropped(t *testing.T) {
	refs := &fakeReferences{
		companies:   []model.Company{{ID: "co-3", Name: "Star Health"}},
		customers:   []model.Customer{{ID: "cust-7"}},
		holdCompany: make(chan struct{}),
	}
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{References: refs})

	done := make(chan struct{})
	go func() {
		s.LoadReferenceData(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool {
		return len(s.ReferenceData().Customers.Items) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.ReferenceData().Companies.Loading)

	s.Close()
	close(refs.holdCompany)
	<-done

	data := s.ReferenceData()
	assert.True(t, data.Companies.Loading)
	assert.Empty(t, data.Companies.Items)
}

func TestLoadWithoutProviderIsNoop(t *testing.T) {
	s := newSession(t, model.KindLead, &fakeSubmitter{}, Options{})
	s.LoadReferenceData(context.Background())
	data := s.ReferenceData()
	assert.False(t, data.Companies.Loading)
	assert.NotNil(t, data.Customers.Items)
}
