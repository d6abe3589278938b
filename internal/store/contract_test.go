package store

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"contractdesk/internal/models"
)

const offerText = "Dear <applicant_name>,\n\nYou start on <start_date>."

func (s *stores) createContract(t *testing.T, in NewContract) *models.Contract {
	t.Helper()
	res, err := s.contracts.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.Success {
		t.Fatalf("Create failed: %s", res.Message)
	}
	return res.Data
}

func TestContractCreate(t *testing.T) {
	s := newStores(t, nil)
	tmpl := s.uploadText(t, "Offer", offerText)

	values := map[string]string{"applicant_name": "Ada"}
	c := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "Offer for Ada", Values: values, CreatedBy: "hr"})

	if c.Status != models.StatusDraft || c.Version != 1 {
		t.Errorf("status = %q, version = %d", c.Status, c.Version)
	}
	if c.Content != "Dear Ada,\n\nYou start on <start_date>." {
		t.Errorf("content = %q", c.Content)
	}
	if c.TemplateContent != tmpl.File.Content || c.TemplateFormat != models.FormatTXT {
		t.Error("contract should hold a copy of the template binary")
	}
	if c.TemplateName != "Offer" {
		t.Errorf("template name = %q", c.TemplateName)
	}

	// The contract owns its values.
	values["applicant_name"] = "Mallory"
	found, _ := s.contracts.FindByID(context.Background(), c.ID)
	if found.FieldValues["applicant_name"] != "Ada" {
		t.Error("contract values alias the caller's map")
	}
}

func TestContractCreateSurvivesTemplateDelete(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "Offer", offerText)
	c := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "Offer"})

	if res, _ := s.templates.Delete(ctx, tmpl.ID); !res.Success {
		t.Fatal(res.Message)
	}
	res, err := s.contracts.UpdateValues(ctx, c.ID, map[string]string{"applicant_name": "Ada", "start_date": "2026-04-01"})
	if err != nil || !res.Success {
		t.Fatalf("UpdateValues: %+v, %v", res, err)
	}
	if res.Data.Content != "Dear Ada,\n\nYou start on 2026-04-01." {
		t.Errorf("content = %q", res.Data.Content)
	}
}

func TestContractCreateValidation(t *testing.T) {
	s := newStores(t, nil)
	tmpl := s.uploadText(t, "Offer", offerText)

	tests := []struct {
		name string
		in   NewContract
		want string
	}{
		{"missing title", NewContract{TemplateID: tmpl.ID}, "Title is required."},
		{"missing template", NewContract{Title: "T"}, "Template is required."},
		{"unknown template", NewContract{TemplateID: uuid.New(), Title: "T"}, "Template not found."},
		{"bad reviewer", NewContract{TemplateID: tmpl.ID, Title: "T", Reviewers: []Participant{{Name: "R", Email: "r"}}}, "Reviewer email must be a valid email address."},
		{"strict missing", NewContract{TemplateID: tmpl.ID, Title: "T", Strict: true, Values: map[string]string{"applicant_name": "Ada", "start_date": ""}}, "Missing values for: start_date."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.contracts.Create(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if res.Success || res.Message != tc.want {
				t.Errorf("got %+v, want failure %q", res, tc.want)
			}
		})
	}
}

func TestContractUpdateValues(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "Offer", offerText)
	c := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "Offer", Values: map[string]string{"applicant_name": "Ada"}})

	res, err := s.contracts.UpdateValues(ctx, c.ID, map[string]string{"start_date": "2026-04-01"})
	if err != nil || !res.Success {
		t.Fatalf("UpdateValues: %+v, %v", res, err)
	}
	if res.Data.Content != "Dear Ada,\n\nYou start on 2026-04-01." {
		t.Errorf("merge failed: %q", res.Data.Content)
	}
	if res.Data.Version != 2 {
		t.Errorf("version = %d, want 2", res.Data.Version)
	}

	// Clearing a value restores the placeholder.
	res, _ = s.contracts.UpdateValues(ctx, c.ID, map[string]string{"applicant_name": ""})
	if !strings.Contains(res.Data.Content, "<applicant_name>") {
		t.Errorf("cleared value should leave placeholder: %q", res.Data.Content)
	}

	if res, _ := s.contracts.UpdateValues(ctx, uuid.New(), nil); res.Success {
		t.Error("unknown contract should fail")
	}
}

func TestContractLifecycle(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "Offer", offerText)
	c := s.createContract(t, NewContract{
		TemplateID: tmpl.ID,
		Title:      "Offer",
		Values:     map[string]string{"applicant_name": "Ada"},
		Reviewers:  []Participant{{Name: "Rita", Email: "rita@example.com"}},
		Approvers:  []Participant{{Name: "Alan", Email: "alan@example.com"}},
	})

	// Unfilled placeholders block review.
	res, _ := s.contracts.Transition(ctx, c.ID, models.StatusReviewApproval)
	if res.Success || !strings.Contains(res.Message, "start_date") {
		t.Fatalf("expected unresolved field failure, got %+v", res)
	}
	if res, _ := s.contracts.UpdateValues(ctx, c.ID, map[string]string{"start_date": "2026-04-01"}); !res.Success {
		t.Fatal(res.Message)
	}

	// Illegal jump.
	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusActive); res.Success {
		t.Fatal("draft -> active should be rejected")
	}

	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusReviewApproval); !res.Success {
		t.Fatal(res.Message)
	}

	// Values are frozen while in review.
	if res, _ := s.contracts.UpdateValues(ctx, c.ID, map[string]string{"applicant_name": "Eve"}); res.Success {
		t.Error("contract in review should not be editable")
	}

	// Pending decisions block signature.
	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusWaitingForSignature); res.Success {
		t.Fatal("pending reviewers should block signature")
	}

	review := func(role, email string, status models.ReviewStatus) {
		t.Helper()
		res, err := s.contracts.Review(ctx, c.ID, ReviewInput{Role: role, Email: email, Status: status, Comment: " ok "})
		if err != nil || !res.Success {
			t.Fatalf("Review(%s): %+v, %v", email, res, err)
		}
	}
	review("reviewer", "RITA@example.com", models.ReviewApproved)
	review("approver", "alan@example.com", models.ReviewApproved)

	if res, _ := s.contracts.Review(ctx, c.ID, ReviewInput{Role: "approver", Email: "rita@example.com", Status: models.ReviewApproved}); res.Success {
		t.Error("reviewer should not be able to approve")
	}

	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusWaitingForSignature); !res.Success {
		t.Fatal(res.Message)
	}
	res, err := s.contracts.Transition(ctx, c.ID, models.StatusActive)
	if err != nil || !res.Success {
		t.Fatalf("activate: %+v, %v", res, err)
	}
	if res.Data.SignedAt == nil {
		t.Error("activation should stamp SignedAt")
	}
	if res.Data.Reviewers[0].Comment != "ok" {
		t.Errorf("comment = %q", res.Data.Reviewers[0].Comment)
	}

	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusExpired); !res.Success {
		t.Fatal(res.Message)
	}
	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusActive); res.Success {
		t.Error("expired is terminal")
	}
}

func TestContractRejectionBlocksSignature(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "NDA", "Between <party>.")
	c := s.createContract(t, NewContract{
		TemplateID: tmpl.ID,
		Title:      "NDA",
		Values:     map[string]string{"party": "Acme"},
		Reviewers:  []Participant{{Name: "Rita", Email: "rita@example.com"}},
		Approvers:  []Participant{{Name: "Alan", Email: "alan@example.com"}},
	})
	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusReviewApproval); !res.Success {
		t.Fatal(res.Message)
	}

	for _, in := range []ReviewInput{
		{Role: "reviewer", Email: "rita@example.com", Status: models.ReviewRejected, Comment: "wrong party"},
		{Role: "approver", Email: "alan@example.com", Status: models.ReviewApproved},
	} {
		if res, err := s.contracts.Review(ctx, c.ID, in); err != nil || !res.Success {
			t.Fatalf("Review(%s): %+v, %v", in.Email, res, err)
		}
	}

	res, err := s.contracts.Transition(ctx, c.ID, models.StatusWaitingForSignature)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success {
		t.Fatal("a rejected review must block signature")
	}
	if !strings.Contains(res.Message, "rejected") {
		t.Errorf("message = %q", res.Message)
	}

	// The rejection branches stay open.
	if res, _ := s.contracts.Transition(ctx, c.ID, models.StatusChangesRequested); !res.Success {
		t.Errorf("changes_requested after rejection: %s", res.Message)
	}
}

func TestContractReviewReadinessIgnoresValueText(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "Memo", "Note: <note>")
	c := s.createContract(t, NewContract{
		TemplateID: tmpl.ID,
		Title:      "Memo",
		Values:     map[string]string{"note": "see <appendix>"},
	})
	if c.Content != "Note: see <appendix>" {
		t.Fatalf("content = %q", c.Content)
	}

	res, err := s.contracts.Transition(ctx, c.ID, models.StatusReviewApproval)
	if err != nil || !res.Success {
		t.Fatalf("value text must not count as an unfilled field: %+v, %v", res, err)
	}
}

func TestContractReviewRequiresReviewStatus(t *testing.T) {
	s := newStores(t, nil)
	tmpl := s.uploadText(t, "Offer", "<x>")
	c := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "T", Reviewers: []Participant{{Name: "R", Email: "r@example.com"}}})

	res, err := s.contracts.Review(context.Background(), c.ID, ReviewInput{Role: "reviewer", Email: "r@example.com", Status: models.ReviewApproved})
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Message != "Contract is not awaiting review." {
		t.Errorf("got %+v", res)
	}
}

func TestContractTransitionUnknownStatus(t *testing.T) {
	s := newStores(t, nil)
	tmpl := s.uploadText(t, "Offer", "<x>")
	c := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "T"})

	res, _ := s.contracts.Transition(context.Background(), c.ID, "archived")
	if res.Success || !strings.Contains(res.Message, "Unknown contract status") {
		t.Errorf("got %+v", res)
	}
}

func TestContractListStatsDelete(t *testing.T) {
	s := newStores(t, nil)
	ctx := context.Background()
	tmpl := s.uploadText(t, "Offer", "plain")
	a := s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "A"})
	s.createContract(t, NewContract{TemplateID: tmpl.ID, Title: "B"})
	if res, _ := s.contracts.Transition(ctx, a.ID, models.StatusReviewApproval); !res.Success {
		t.Fatal(res.Message)
	}

	all, err := s.contracts.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List: %d, %v", len(all), err)
	}
	if all[0].ID != a.ID {
		t.Error("most recently updated contract should come first")
	}
	drafts, _ := s.contracts.List(ctx, models.StatusDraft)
	if len(drafts) != 1 || drafts[0].Title != "B" {
		t.Errorf("drafts = %+v", drafts)
	}

	stats, err := s.contracts.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != len(models.AllStatuses) {
		t.Errorf("stats should list every status: %v", stats)
	}
	if stats[models.StatusDraft] != 1 || stats[models.StatusReviewApproval] != 1 || stats[models.StatusActive] != 0 {
		t.Errorf("stats = %v", stats)
	}

	if res, err := s.contracts.Delete(ctx, a.ID); err != nil || !res.Success {
		t.Fatalf("Delete: %+v, %v", res, err)
	}
	if found, _ := s.contracts.FindByID(ctx, a.ID); found != nil {
		t.Error("contract still present")
	}
}
