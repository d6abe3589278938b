// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contractdesk/internal/kv"
	"contractdesk/internal/models"
	"contractdesk/internal/placeholder"
)

// Participant is a reviewer or approver named on a contract.
type Participant struct {
	Name  string `json:"name" label:"Reviewer name" validate:"required,max=200"`
	Email string `json:"email" label:"Reviewer email" validate:"required,email"`
}

// NewContract is the payload for generating a contract from a template.
type NewContract struct {
	TemplateID uuid.UUID         `json:"template_id" label:"Template" validate:"required"`
	Title      string            `json:"title" label:"Title" validate:"required,max=200"`
	Values     map[string]string `json:"values" label:"Field values" validate:"max=500,dive,max=10000"`
	CreatedBy  string            `json:"created_by" label:"Created by" validate:"max=200"`
	Reviewers  []Participant     `json:"reviewers" validate:"dive"`
	Approvers  []Participant     `json:"approvers" validate:"dive"`
	ExpiresAt  *time.Time        `json:"expires_at"`

	// Strict rejects the contract when a template field has no value.
	Strict bool `json:"strict"`
}

// ReviewInput records one reviewer's or approver's decision.
type ReviewInput struct {
	Role    string              `json:"role" label:"Role" validate:"required,oneof=reviewer approver"`
	Email   string              `json:"email" label:"Email" validate:"required,email"`
	Status  models.ReviewStatus `json:"status" label:"Decision" validate:"required,oneof=approved rejected commented"`
	Comment string              `json:"comment" label:"Comment" validate:"max=2000"`
}

// ContractStore manages contracts generated from templates.
type ContractStore struct {
	backend
	mu sync.Mutex
}

// NewContractStore returns a new ContractStore.
func NewContractStore(store kv.Store, latency time.Duration) *ContractStore {
	return &ContractStore{backend: newBackend(store, latency)}
}

// List returns contracts most recently updated first. An empty status
// matches every contract.
func (s *ContractStore) List(ctx context.Context, status models.ContractStatus) ([]models.Contract, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	for _, c := range items {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// FindByID retrieves a contract by ID. Returns nil if not found.
func (s *ContractStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return nil, err
	}
	if idx := indexContract(items, id); idx >= 0 {
		return &items[idx], nil
	}
	return nil, nil
}

// Create generates a draft contract from a template. The contract keeps
// its own copy of the template binary and of the supplied values.
func (s *ContractStore) Create(ctx context.Context, in NewContract) (models.Result[*models.Contract], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Contract]{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return models.Fail[*models.Contract](validationMessage(err)), nil
	}

	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	idx := indexTemplate(items, in.TemplateID)
	if idx < 0 {
		return models.Fail[*models.Contract]("Template not found."), nil
	}
	tmpl := items[idx]

	if in.Strict {
		if missing := placeholder.Missing(tmpl.Fields, in.Values); len(missing) > 0 {
			return models.Fail[*models.Contract]("Missing values for: " + strings.Join(missing, ", ") + "."), nil
		}
	}

	text, err := FileText(tmpl.File)
	if err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("read template %s: %w", tmpl.ID, err)
	}

	now := s.now()
	c := models.Contract{
		ID:              uuid.New(),
		Title:           in.Title,
		TemplateID:      tmpl.ID,
		TemplateName:    tmpl.Name,
		TemplateContent: tmpl.File.Content,
		TemplateFormat:  tmpl.File.Format,
		FieldValues:     copyValues(in.Values),
		Status:          models.StatusDraft,
		Reviewers:       participants(in.Reviewers, now),
		Approvers:       participants(in.Approvers, now),
		Version:         1,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       in.ExpiresAt,
	}
	c.Content = placeholder.Populate(text, c.FieldValues)

	s.mu.Lock()
	defer s.mu.Unlock()

	contracts, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	contracts = append(contracts, c)
	if err := saveList(ctx, s.kv, KeyContracts, contracts); err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("create contract: %w", err)
	}
	return models.OK("Contract created successfully.", &c), nil
}

// UpdateValues merges values into an editable contract and regenerates its
// content from the contract's template copy. An empty value clears a field.
func (s *ContractStore) UpdateValues(ctx context.Context, id uuid.UUID, values map[string]string) (models.Result[*models.Contract], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Contract]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	idx := indexContract(items, id)
	if idx < 0 {
		return models.Fail[*models.Contract]("Contract not found."), nil
	}
	c := &items[idx]
	if !c.Status.Editable() {
		return models.Fail[*models.Contract](fmt.Sprintf("Contracts in status %q cannot be edited.", c.Status)), nil
	}

	text, err := templateText(c)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}

	merged := copyValues(c.FieldValues)
	for k, v := range values {
		merged[k] = v
	}
	c.FieldValues = merged
	c.Content = placeholder.Populate(text, merged)
	c.Version++
	c.UpdatedAt = s.now()

	if err := saveList(ctx, s.kv, KeyContracts, items); err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("update contract values: %w", err)
	}
	out := *c
	return models.OK("Contract updated successfully.", &out), nil
}

// Transition moves a contract through its lifecycle. Submitting for review
// requires every placeholder to be filled and resets reviewer decisions;
// sending for signature requires every reviewer and approver to respond.
func (s *ContractStore) Transition(ctx context.Context, id uuid.UUID, next models.ContractStatus) (models.Result[*models.Contract], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Contract]{}, err
	}
	if !next.Valid() {
		return models.Fail[*models.Contract](fmt.Sprintf("Unknown contract status %q.", next)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	idx := indexContract(items, id)
	if idx < 0 {
		return models.Fail[*models.Contract]("Contract not found."), nil
	}
	c := &items[idx]
	if !c.Status.CanTransitionTo(next) {
		return models.Fail[*models.Contract](fmt.Sprintf("Cannot move a contract from %q to %q.", c.Status, next)), nil
	}

	now := s.now()
	switch next {
	case models.StatusReviewApproval:
		text, err := templateText(c)
		if err != nil {
			return models.Result[*models.Contract]{}, err
		}
		if missing := placeholder.Missing(placeholder.ExtractFields(text), c.FieldValues); len(missing) > 0 {
			return models.Fail[*models.Contract]("Fill in all fields before submitting for review: " + strings.Join(missing, ", ") + "."), nil
		}
		resetDecisions(c.Reviewers, now)
		resetDecisions(c.Approvers, now)
	case models.StatusWaitingForSignature:
		if models.AnyRejected(c.Reviewers) || models.AnyRejected(c.Approvers) {
			return models.Fail[*models.Contract]("The contract was rejected in review. Request changes or reject it instead."), nil
		}
		if !models.AllReviewed(c.Reviewers) || !models.AllReviewed(c.Approvers) {
			return models.Fail[*models.Contract]("All reviewers and approvers must respond before sending for signature."), nil
		}
	case models.StatusActive:
		if c.SignedAt == nil {
			c.SignedAt = &now
		}
	}

	c.Status = next
	c.Version++
	c.UpdatedAt = now
	if err := saveList(ctx, s.kv, KeyContracts, items); err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("transition contract: %w", err)
	}
	out := *c
	return models.OK(fmt.Sprintf("Contract moved to %s.", next), &out), nil
}

// Review records a reviewer's or approver's decision on a contract that is
// awaiting review.
func (s *ContractStore) Review(ctx context.Context, id uuid.UUID, in ReviewInput) (models.Result[*models.Contract], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Contract]{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.Fail[*models.Contract](validationMessage(err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	idx := indexContract(items, id)
	if idx < 0 {
		return models.Fail[*models.Contract]("Contract not found."), nil
	}
	c := &items[idx]
	if c.Status != models.StatusReviewApproval {
		return models.Fail[*models.Contract]("Contract is not awaiting review."), nil
	}

	records := c.Reviewers
	if in.Role == "approver" {
		records = c.Approvers
	}
	var rec *models.ReviewRecord
	for i := range records {
		if strings.EqualFold(records[i].Email, in.Email) {
			rec = &records[i]
			break
		}
	}
	if rec == nil {
		return models.Fail[*models.Contract](fmt.Sprintf("%s is not an assigned %s on this contract.", in.Email, in.Role)), nil
	}

	now := s.now()
	rec.Status = in.Status
	rec.Comment = strings.TrimSpace(in.Comment)
	rec.UpdatedAt = now
	c.UpdatedAt = now

	if err := saveList(ctx, s.kv, KeyContracts, items); err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("record review: %w", err)
	}
	out := *c
	return models.OK("Review recorded.", &out), nil
}

// Delete removes a contract.
func (s *ContractStore) Delete(ctx context.Context, id uuid.UUID) (models.Result[*models.Contract], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Contract]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Contract](ctx, s.kv, KeyContracts)
	if err != nil {
		return models.Result[*models.Contract]{}, err
	}
	idx := indexContract(items, id)
	if idx < 0 {
		return models.Fail[*models.Contract]("Contract not found."), nil
	}
	c := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	if err := saveList(ctx, s.kv, KeyContracts, items); err != nil {
		return models.Result[*models.Contract]{}, fmt.Errorf("delete contract: %w", err)
	}
	return models.OK("Contract deleted successfully.", &c), nil
}

// Stats returns the number of contracts in each status. Every status is
// present in the result.
func (s *ContractStore) Stats(ctx context.Context) (map[models.ContractStatus]int, error) {
	items, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	stats := make(map[models.ContractStatus]int, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		stats[st] = 0
	}
	for _, c := range items {
		stats[c.Status]++
	}
	return stats, nil
}

func participants(ps []Participant, now time.Time) []models.ReviewRecord {
	if len(ps) == 0 {
		return nil
	}
	out := make([]models.ReviewRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, models.ReviewRecord{
			Name:      strings.TrimSpace(p.Name),
			Email:     strings.TrimSpace(p.Email),
			Status:    models.ReviewPending,
			UpdatedAt: now,
		})
	}
	return out
}

// templateText returns the flat text of the contract's own template copy.
func templateText(c *models.Contract) (string, error) {
	text, err := FileText(models.TemplateFile{Name: c.TemplateName, Content: c.TemplateContent, Format: c.TemplateFormat})
	if err != nil {
		return "", fmt.Errorf("read template copy of contract %s: %w", c.ID, err)
	}
	return text, nil
}

func resetDecisions(rs []models.ReviewRecord, now time.Time) {
	for i := range rs {
		rs[i].Status = models.ReviewPending
		rs[i].Comment = ""
		rs[i].UpdatedAt = now
	}
}

func indexContract(items []models.Contract, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
