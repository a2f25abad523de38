package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edvantage/crm-backend/internal/crm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the SQL implementations closely
// enough for service-level behavior: unique keys, ordering, atomic counter
// advances under a lock.

type fakeLeadRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*models.Lead
	seq   int
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*models.Lead)}
}

func (f *fakeLeadRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.WorkspaceID != workspaceID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeLeadRepo) FindByPhone(_ context.Context, workspaceID uuid.UUID, phone string) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lead := range f.leads {
		if lead.WorkspaceID == workspaceID && lead.Phone == phone {
			copied := *lead
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeadRepo) CreateOrGet(_ context.Context, lead *models.Lead) (*models.Lead, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.leads {
		if existing.WorkspaceID == lead.WorkspaceID && existing.Phone == lead.Phone {
			copied := *existing
			return &copied, false, nil
		}
	}
	lead.ID = uuid.New()
	f.seq++
	lead.CreatedAt = time.Unix(int64(f.seq), 0)
	copied := *lead
	f.leads[lead.ID] = &copied
	return lead, true, nil
}

func (f *fakeLeadRepo) Update(_ context.Context, lead *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) UpdateStatus(_ context.Context, workspaceID, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.WorkspaceID != workspaceID {
		return gorm.ErrRecordNotFound
	}
	lead.Status = status
	return nil
}

func (f *fakeLeadRepo) SetOwner(_ context.Context, workspaceID, id uuid.UUID, ownerID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.WorkspaceID != workspaceID {
		return gorm.ErrRecordNotFound
	}
	lead.OwnerID = ownerID
	return nil
}

func (f *fakeLeadRepo) AddRevenue(_ context.Context, workspaceID, id uuid.UUID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.WorkspaceID != workspaceID {
		return gorm.ErrRecordNotFound
	}
	lead.Revenue += amount
	return nil
}

func (f *fakeLeadRepo) FindUnassignedBySource(_ context.Context, workspaceID uuid.UUID, source string) ([]models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Lead
	for _, lead := range f.leads {
		if lead.WorkspaceID == workspaceID && lead.Source == source && lead.OwnerID == nil {
			out = append(out, *lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLeadRepo) List(_ context.Context, workspaceID uuid.UUID, limit, offset int) ([]models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Lead
	for _, lead := range f.leads {
		if lead.WorkspaceID == workspaceID {
			out = append(out, *lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules []*models.AssignmentRule
	seq   int
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{}
}

func (f *fakeRuleRepo) Create(_ context.Context, rule *models.AssignmentRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule.ID = uuid.New()
	f.seq++
	rule.CreatedAt = time.Unix(int64(f.seq), 0)
	copied := *rule
	f.rules = append(f.rules, &copied)
	return nil
}

func (f *fakeRuleRepo) find(id uuid.UUID) *models.AssignmentRule {
	for _, r := range f.rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRuleRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*models.AssignmentRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil || r.WorkspaceID != workspaceID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRuleRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error) {
	return f.findSorted(workspaceID, false), nil
}

func (f *fakeRuleRepo) FindEnabled(_ context.Context, workspaceID uuid.UUID) ([]models.AssignmentRule, error) {
	return f.findSorted(workspaceID, true), nil
}

func (f *fakeRuleRepo) findSorted(workspaceID uuid.UUID, enabledOnly bool) []models.AssignmentRule {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AssignmentRule
	for _, r := range f.rules {
		if r.WorkspaceID != workspaceID {
			continue
		}
		if enabledOnly && !r.IsEnabled {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (f *fakeRuleRepo) Update(_ context.Context, rule *models.AssignmentRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.find(rule.ID)
	if existing == nil {
		return gorm.ErrRecordNotFound
	}
	*existing = *rule
	return nil
}

func (f *fakeRuleRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rules {
		if r.ID == id && r.WorkspaceID == workspaceID {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRuleRepo) AdvanceRotation(_ context.Context, ruleID uuid.UUID, poolSize int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(ruleID)
	if r == nil {
		return 0, gorm.ErrRecordNotFound
	}
	slot := r.RotationIndex % poolSize
	r.RotationIndex++
	return slot, nil
}

func (f *fakeRuleRepo) AdvancePercentage(_ context.Context, ruleID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(ruleID)
	if r == nil {
		return 0, gorm.ErrRecordNotFound
	}
	count := r.HitCount
	r.HitCount++
	return count, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	// membership order, like the SQL impl orders by membership creation time
	order []uuid.UUID
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
		f.order = append(f.order, u.ID)
	}
	return f
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindActive(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ActiveMemberIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, id := range f.order {
		if f.users[id].IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []models.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (f *fakeActivityRepo) Append(_ context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity.ID = uuid.New()
	activity.CreatedAt = time.Now()
	f.entries = append(f.entries, *activity)
	return nil
}

func (f *fakeActivityRepo) ListForLead(_ context.Context, workspaceID, leadID uuid.UUID, _ int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Activity
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.WorkspaceID == workspaceID && e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ofType returns the recorded activities of one type, oldest first.
func (f *fakeActivityRepo) ofType(activityType string) []models.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Activity
	for _, e := range f.entries {
		if e.Type == activityType {
			out = append(out, e)
		}
	}
	return out
}

type fakeTriggerRepo struct {
	mu       sync.Mutex
	triggers []*models.WhatsAppTrigger
}

func newFakeTriggerRepo() *fakeTriggerRepo {
	return &fakeTriggerRepo{}
}

func (f *fakeTriggerRepo) Create(_ context.Context, trigger *models.WhatsAppTrigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	trigger.ID = uuid.New()
	copied := *trigger
	f.triggers = append(f.triggers, &copied)
	return nil
}

func (f *fakeTriggerRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*models.WhatsAppTrigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.ID == id && t.WorkspaceID == workspaceID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTriggerRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.WhatsAppTrigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WhatsAppTrigger
	for _, t := range f.triggers {
		if t.WorkspaceID == workspaceID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTriggerRepo) FindByStatus(_ context.Context, workspaceID uuid.UUID, status string) (*models.WhatsAppTrigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.WorkspaceID == workspaceID && t.Status == status {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTriggerRepo) Update(_ context.Context, trigger *models.WhatsAppTrigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.ID == trigger.ID {
			*t = *trigger
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTriggerRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.triggers {
		if t.ID == id && t.WorkspaceID == workspaceID {
			f.triggers = append(f.triggers[:i], f.triggers[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeStatusRepo struct {
	mu       sync.Mutex
	statuses []*models.StatusConfig
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{}
}

func (f *fakeStatusRepo) Create(_ context.Context, status *models.StatusConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	status.ID = uuid.New()
	if status.IsDefault {
		for _, s := range f.statuses {
			if s.WorkspaceID == status.WorkspaceID {
				s.IsDefault = false
			}
		}
	}
	copied := *status
	f.statuses = append(f.statuses, &copied)
	return nil
}

func (f *fakeStatusRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*models.StatusConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if s.ID == id && s.WorkspaceID == workspaceID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStatusRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.StatusConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StatusConfig
	for _, s := range f.statuses {
		if s.WorkspaceID == workspaceID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStatusRepo) FindByName(_ context.Context, workspaceID uuid.UUID, name string) (*models.StatusConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if s.WorkspaceID == workspaceID && s.Name == name {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStatusRepo) DefaultStatus(_ context.Context, workspaceID uuid.UUID) (*models.StatusConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if s.WorkspaceID == workspaceID && s.IsDefault {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStatusRepo) Update(_ context.Context, status *models.StatusConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if s.ID == status.ID {
			if status.IsDefault {
				for _, other := range f.statuses {
					if other.WorkspaceID == status.WorkspaceID && other.ID != status.ID {
						other.IsDefault = false
					}
				}
			}
			*s = *status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStatusRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.statuses {
		if s.ID == id && s.WorkspaceID == workspaceID {
			f.statuses = append(f.statuses[:i], f.statuses[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeFieldRepo struct {
	mu     sync.Mutex
	fields []*models.LeadField
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{}
}

func (f *fakeFieldRepo) Create(_ context.Context, field *models.LeadField) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	field.ID = uuid.New()
	copied := *field
	f.fields = append(f.fields, &copied)
	return nil
}

func (f *fakeFieldRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*models.LeadField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range f.fields {
		if fl.ID == id && fl.WorkspaceID == workspaceID {
			copied := *fl
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFieldRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.LeadField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LeadField
	for _, fl := range f.fields {
		if fl.WorkspaceID == workspaceID {
			out = append(out, *fl)
		}
	}
	return out, nil
}

func (f *fakeFieldRepo) Update(_ context.Context, field *models.LeadField) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range f.fields {
		if fl.ID == field.ID {
			*fl = *field
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeFieldRepo) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fl := range f.fields {
		if fl.ID == id && fl.WorkspaceID == workspaceID {
			f.fields = append(f.fields[:i], f.fields[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) ListForLead(_ context.Context, workspaceID, leadID uuid.UUID) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for i := len(f.payments) - 1; i >= 0; i-- {
		p := f.payments[i]
		if p.WorkspaceID == workspaceID && p.LeadID == leadID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeProvider is a recording WhatsApp gateway provider.
type fakeProvider struct {
	mu    sync.Mutex
	sends []fakeSend
	err   error
}

type fakeSend struct {
	To       string
	Campaign string
	Params   []string
}

func (f *fakeProvider) SendTemplate(_ context.Context, to, campaignName string, params []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sends = append(f.sends, fakeSend{To: to, Campaign: campaignName, Params: params})
	return "delivery-1", nil
}

func (f *fakeProvider) GetProviderName() string {
	return "fake"
}

func (f *fakeProvider) sent() []fakeSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeSend, len(f.sends))
	copy(out, f.sends)
	return out
}
