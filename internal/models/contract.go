// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus is a stage in the contract lifecycle.
type ContractStatus string

const (
	StatusDraft               ContractStatus = "draft"
	StatusReviewApproval      ContractStatus = "review_approval"
	StatusWaitingForSignature ContractStatus = "waiting_for_signature"
	StatusActive              ContractStatus = "active"
	StatusExpiring            ContractStatus = "expiring"
	StatusExpired             ContractStatus = "expired"
	StatusRejected            ContractStatus = "rejected"
	StatusChangesRequested    ContractStatus = "changes_requested"
)

// AllStatuses lists every lifecycle status in display order.
var AllStatuses = []ContractStatus{
	StatusDraft,
	StatusReviewApproval,
	StatusWaitingForSignature,
	StatusActive,
	StatusExpiring,
	StatusExpired,
	StatusRejected,
	StatusChangesRequested,
}

// transitions is the lifecycle graph. The happy path runs
// draft → review_approval → waiting_for_signature → active → expiring → expired;
// review can branch to rejected or changes_requested.
var transitions = map[ContractStatus][]ContractStatus{
	StatusDraft:               {StatusReviewApproval},
	StatusReviewApproval:      {StatusWaitingForSignature, StatusRejected, StatusChangesRequested},
	StatusChangesRequested:    {StatusReviewApproval, StatusDraft},
	StatusWaitingForSignature: {StatusActive, StatusRejected},
	StatusActive:              {StatusExpiring, StatusExpired},
	StatusExpiring:            {StatusActive, StatusExpired},
	StatusRejected:            {StatusDraft},
}

// Valid reports whether s is a known status.
func (s ContractStatus) Valid() bool {
	_, ok := transitions[s]
	return ok || s == StatusExpired
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Editable reports whether field values may still change in this status.
func (s ContractStatus) Editable() bool {
	return s == StatusDraft || s == StatusChangesRequested
}

// ReviewStatus is the decision state of a single reviewer or approver.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewCommented ReviewStatus = "commented"
)

// ReviewRecord tracks one reviewer's or approver's involvement.
type ReviewRecord struct {
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Status    ReviewStatus `json:"status"`
	Comment   string       `json:"comment,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Contract is a template populated with concrete values. It owns its value
// map and rendered content, and keeps its own copy of the template binary so
// later template changes never alter an issued contract.
type Contract struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	TemplateID      uuid.UUID         `json:"template_id"`
	TemplateName    string            `json:"template_name"`
	TemplateContent string            `json:"template_content"`
	TemplateFormat  FileFormat        `json:"template_format"`
	FieldValues     map[string]string `json:"field_values"`
	Content         string            `json:"content"`
	Status          ContractStatus    `json:"status"`
	Reviewers       []ReviewRecord    `json:"reviewers,omitempty"`
	Approvers       []ReviewRecord    `json:"approvers,omitempty"`
	Version         int               `json:"version"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	SignedAt        *time.Time        `json:"signed_at,omitempty"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
}

// AnyRejected reports whether any record in rs rejected the contract.
func AnyRejected(rs []ReviewRecord) bool {
	for _, r := range rs {
		if r.Status == ReviewRejected {
			return true
		}
	}
	return false
}

// AllReviewed reports whether every record in rs has reached a decision.
func AllReviewed(rs []ReviewRecord) bool {
	for _, r := range rs {
		if r.Status == ReviewPending {
			return false
		}
	}
	return true
}
