package proposals

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaddesk/internal/database"
	"leaddesk/internal/metrics"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

type fixture struct {
	svc       *Service
	store     database.Service
	proposals *repository.Collection[models.Proposal]
	leads     *repository.Collection[models.Lead]
	templates *repository.Collection[models.ProposalTemplate]
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := database.NewMemory()
	f := &fixture{
		store:     store,
		proposals: repository.New[models.Proposal](store, models.KeyProposals, "proposal"),
		leads:     repository.New[models.Lead](store, models.KeyLeads, "lead"),
		templates: repository.New[models.ProposalTemplate](store, models.KeyProposalTemplates, "template"),
		metrics:   metrics.New(),
	}
	f.svc = NewService(f.proposals, f.leads, f.templates, nil, f.metrics)

	require.NoError(t, f.leads.Insert(context.Background(), models.Lead{
		ID: "lead-1", CompanyName: "Acme", ContactPerson: "J. Doe", Status: models.LeadNew,
	}))
	require.NoError(t, f.leads.Insert(context.Background(), models.Lead{
		ID: "lead-2", CompanyName: "Globex", ContactPerson: "H. Scorpio", Status: models.LeadNew,
	}))
	return f
}

func fanuc() models.SpecFields {
	return models.SpecFields{
		Robot:      "R-2000iA/100P",
		Controller: "RJ3iB",
		Reach:      "3500",
		Payload:    "100",
		Brand:      "Fanuc",
		Cost:       251000,
	}
}

func (f *fixture) create(t *testing.T, leadID string, spec models.SpecFields) models.Proposal {
	t.Helper()
	p, err := f.svc.CreateProposal(context.Background(), models.ProposalInput{LeadID: leadID, SpecFields: spec}, "u1")
	require.NoError(t, err)
	return p
}

func TestCreateProposal(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	assert.Equal(t, models.ProposalDraft, p.Status)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, []models.ProposalHistory{}, p.History)
	assert.Equal(t, []models.Attachment{}, p.Attachments)
	assert.Equal(t, "lead-1", p.LeadID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ProposalsCreated))
}

func TestCreateProposalRequiresSpecFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	blank := map[string]func(*models.SpecFields){
		"robot":      func(s *models.SpecFields) { s.Robot = "" },
		"controller": func(s *models.SpecFields) { s.Controller = "" },
		"reach":      func(s *models.SpecFields) { s.Reach = "" },
		"payload":    func(s *models.SpecFields) { s.Payload = " " },
		"brand":      func(s *models.SpecFields) { s.Brand = "" },
		"cost":       func(s *models.SpecFields) { s.Cost = -1 },
	}
	for field, mutate := range blank {
		t.Run(field, func(t *testing.T) {
			spec := fanuc()
			mutate(&spec)
			_, err := f.svc.CreateProposal(ctx, models.ProposalInput{LeadID: "lead-1", SpecFields: spec}, "u1")
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Contains(t, err.Error(), field)

			raw, err := f.store.Load(ctx, models.KeyProposals)
			require.NoError(t, err)
			assert.Nil(t, raw, "proposal collection untouched")
		})
	}

	_, err := f.svc.CreateProposal(ctx, models.ProposalInput{SpecFields: fanuc()}, "u1")
	assert.True(t, models.IsValidation(err), "leadId is required")

	_, err = f.svc.CreateProposal(ctx, models.ProposalInput{LeadID: "nope", SpecFields: fanuc()}, "u1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVersionTracksHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	const edits = 5
	for i := 0; i < edits; i++ {
		spec := fanuc()
		spec.Cost = float64(251000 + i)
		var err error
		p, err = f.svc.UpdateProposal(ctx, p.ID, Revision{
			Fields:     models.ProposalInput{SpecFields: spec},
			Changes:    fmt.Sprintf("edit %d", i),
			ModifiedBy: "u2",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1+edits, p.Version)
	require.Len(t, p.History, edits)
	for i, h := range p.History {
		assert.Equal(t, i+2, h.Version)
		assert.Equal(t, fmt.Sprintf("edit %d", i), h.Changes)
		assert.Equal(t, "u2", h.ModifiedBy)
		if i > 0 {
			assert.False(t, h.ModifiedAt.Before(p.History[i-1].ModifiedAt))
		}
	}

	history, err := f.svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.History, history)
	assert.Equal(t, float64(edits), testutil.ToFloat64(f.metrics.ProposalRevisions))
}

func TestFailedUpdateLeavesHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	spec := fanuc()
	spec.Brand = ""
	_, err := f.svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{SpecFields: spec}})
	assert.True(t, models.IsValidation(err))

	_, err = f.svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{LeadID: "lead-2", SpecFields: fanuc()}})
	assert.True(t, models.IsValidation(err), "lead cannot change")

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Empty(t, got.History)

	_, err = f.svc.UpdateProposal(ctx, "missing", Revision{Fields: models.ProposalInput{SpecFields: fanuc()}})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCheckRevision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	assert.NoError(t, f.svc.CheckRevision(ctx, p.ID, Revision{Fields: models.ProposalInput{LeadID: "lead-1", SpecFields: fanuc()}}))

	spec := fanuc()
	spec.Robot = ""
	assert.True(t, models.IsValidation(f.svc.CheckRevision(ctx, p.ID, Revision{Fields: models.ProposalInput{SpecFields: spec}})))
	assert.True(t, models.IsValidation(f.svc.CheckRevision(ctx, p.ID, Revision{Fields: models.ProposalInput{LeadID: "lead-2", SpecFields: fanuc()}})))
	assert.ErrorIs(t, f.svc.CheckRevision(ctx, "missing", Revision{Fields: models.ProposalInput{SpecFields: fanuc()}}), models.ErrNotFound)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestUpdateRecordsTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.CreateProposal(ctx, models.ProposalInput{LeadID: "lead-1", TemplateID: "pt-1", SpecFields: fanuc()}, "u1")
	require.NoError(t, err)

	p, err = f.svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{TemplateID: "pt-2", SpecFields: fanuc()}})
	require.NoError(t, err)
	assert.Equal(t, "pt-2", p.TemplateID)

	p, err = f.svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{SpecFields: fanuc()}})
	require.NoError(t, err)
	assert.Equal(t, "pt-2", p.TemplateID, "an omitted templateId keeps the recorded one")
}

func TestUpdateAppendsAttachments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	p, err := f.svc.UpdateProposal(ctx, p.ID, Revision{
		Fields:      models.ProposalInput{SpecFields: fanuc()},
		Attachments: []models.Attachment{{ID: "a1"}},
	})
	require.NoError(t, err)
	p, err = f.svc.UpdateProposal(ctx, p.ID, Revision{
		Fields:      models.ProposalInput{SpecFields: fanuc()},
		Attachments: []models.Attachment{{ID: "a2"}},
	})
	require.NoError(t, err)
	require.Len(t, p.Attachments, 2)
	assert.Equal(t, "a1", p.Attachments[0].ID)
	assert.Equal(t, "a2", p.Attachments[1].ID)

	p, err = f.svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{SpecFields: fanuc()}})
	require.NoError(t, err)
	assert.Len(t, p.Attachments, 2, "edits never remove attachments")
}

func TestAcmeScenario(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemory()
	leadsRepo := repository.New[models.Lead](store, models.KeyLeads, "lead")
	svc := NewService(
		repository.New[models.Proposal](store, models.KeyProposals, "proposal"),
		leadsRepo,
		repository.New[models.ProposalTemplate](store, models.KeyProposalTemplates, "template"),
		nil, nil,
	)

	lead := models.Lead{
		ID: "acme", CompanyName: "Acme", ContactPerson: "J. Doe", Email: "j@acme.com",
		Phone: "123", Application: "Vision System", Source: models.SourceWebsite, Status: models.LeadNew,
	}
	lead.Normalize()
	require.NoError(t, leadsRepo.Insert(ctx, lead))

	p, err := svc.CreateProposal(ctx, models.ProposalInput{LeadID: lead.ID, SpecFields: fanuc()}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Empty(t, p.History)

	edited := fanuc()
	edited.Cost = 260000
	p, err = svc.UpdateProposal(ctx, p.ID, Revision{Fields: models.ProposalInput{SpecFields: edited}, ModifiedBy: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 2, p.Version)
	assert.Equal(t, 260000.0, p.Cost)
	require.Len(t, p.History, 1)
	assert.Equal(t, 2, p.History[0].Version)
	assert.Equal(t, "Updated proposal: R-2000iA/100P RJ3iB", p.History[0].Changes)
	assert.Equal(t, "u1", p.History[0].ModifiedBy)
	assert.False(t, p.History[0].ModifiedAt.IsZero())
}

func TestApplyTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := models.ProposalTemplate{ID: "pt-1", Name: "Standard Fanuc Robot", SpecFields: fanuc(), IsActive: true}
	tmpl.Description = "Standard industrial robot for assembly operations"
	require.NoError(t, f.templates.Insert(ctx, tmpl))

	before, err := f.store.Load(ctx, models.KeyProposalTemplates)
	require.NoError(t, err)

	first, ok, err := f.svc.ApplyTemplate(ctx, "pt-1")
	require.NoError(t, err)
	require.True(t, ok)
	second, ok, err := f.svc.ApplyTemplate(ctx, "pt-1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, tmpl.SpecFields, first)
	assert.Equal(t, first, second, "idempotent")

	after, err := f.store.Load(ctx, models.KeyProposalTemplates)
	require.NoError(t, err)
	assert.Equal(t, before, after, "templates collection untouched")

	_, ok, err = f.svc.ApplyTemplate(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRecordsTemplateOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.CreateProposal(ctx, models.ProposalInput{LeadID: "lead-1", TemplateID: "gone", SpecFields: fanuc()}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "gone", p.TemplateID)
}

func TestSetStatusKeepsVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	p, err := f.svc.SetStatus(ctx, p.ID, models.ProposalSent)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalSent, p.Status)
	assert.Equal(t, 1, p.Version)
	assert.Empty(t, p.History)

	_, err = f.svc.SetStatus(ctx, p.ID, "archived")
	assert.True(t, models.IsValidation(err))
}

func TestAddAttachmentsDoesNotRevise(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, "lead-1", fanuc())

	p, err := f.svc.AddAttachments(ctx, p.ID, []models.Attachment{{ID: "a1"}})
	require.NoError(t, err)
	assert.Len(t, p.Attachments, 1)
	assert.Equal(t, 1, p.Version)
}

func TestListFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, "lead-1", fanuc())
	kuka := fanuc()
	kuka.Robot = "KR 210"
	kuka.Brand = "KUKA"
	b := f.create(t, "lead-2", kuka)
	_, err := f.svc.SetStatus(ctx, b.ID, models.ProposalApproved)
	require.NoError(t, err)

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"none", ListFilter{}, []string{a.ID, b.ID}},
		{"brand", ListFilter{Search: "kuka"}, []string{b.ID}},
		{"robot", ListFilter{Search: "r-2000"}, []string{a.ID}},
		{"company", ListFilter{Search: "ACME"}, []string{a.ID}},
		{"contact", ListFilter{Search: "scorpio"}, []string{b.ID}},
		{"status", ListFilter{Status: models.ProposalApproved}, []string{b.ID}},
		{"status and search", ListFilter{Status: models.ProposalDraft, Search: "kuka"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.List(ctx, tc.filter)
			require.NoError(t, err)
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestDeleteLeavesOthers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, "lead-1", fanuc())
	b := f.create(t, "lead-1", fanuc())

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	_, err := f.svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := f.svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}
