package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
)

func okDocument() SubmissionDocument {
	return SubmissionDocument{Present: true, Size: 500 * 1024, MIME: "application/pdf"}
}

func okSubmission() Submission {
	return Submission{
		CompanyName:        "Almotamad Trading",
		CommercialRegister: "CR-100200",
		TaxNumber:          "300100200",
		IDDocument:         okDocument(),
		CommercialDocument: okDocument(),
	}
}

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateSubmissionAccepts(t *testing.T) {
	if errs := ValidateSubmission(okSubmission()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateSubmissionRequiredFields(t *testing.T) {
	s := okSubmission()
	s.CompanyName = "   "
	s.CommercialRegister = ""

	errs := ValidateSubmission(s)
	if !hasFieldError(errs, "company_name") || !hasFieldError(errs, "commercial_register") {
		t.Fatalf("missing required-field errors: %v", errs)
	}
}

func TestValidateSubmissionMissingDocuments(t *testing.T) {
	s := okSubmission()
	s.IDDocument = SubmissionDocument{}
	s.CommercialDocument = SubmissionDocument{}

	errs := ValidateSubmission(s)
	if !hasFieldError(errs, "id_document") || !hasFieldError(errs, "commercial_document") {
		t.Fatalf("missing document errors: %v", errs)
	}
}

func TestValidateSubmissionOversizedDocument(t *testing.T) {
	s := okSubmission()
	s.IDDocument.Size = 2*1024*1024 + 1

	errs := ValidateSubmission(s)
	if !hasFieldError(errs, "id_document") {
		t.Fatalf("oversized document not rejected: %v", errs)
	}

	// Exactly at the limit is fine
	s.IDDocument.Size = 2 * 1024 * 1024
	if errs := ValidateSubmission(s); len(errs) != 0 {
		t.Fatalf("2 MiB document should pass, got %v", errs)
	}
}

func TestValidateSubmissionMIMEWhitelist(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "application/pdf"} {
		s := okSubmission()
		s.IDDocument.MIME = mime
		if errs := ValidateSubmission(s); len(errs) != 0 {
			t.Fatalf("%s should be accepted, got %v", mime, errs)
		}
	}

	s := okSubmission()
	s.CommercialDocument.MIME = "image/gif"
	if errs := ValidateSubmission(s); !hasFieldError(errs, "commercial_document") {
		t.Fatalf("image/gif should be rejected, got %v", errs)
	}
}

func TestStatusViewOfNilIsNotFound(t *testing.T) {
	view := StatusViewOf(nil)
	if view.Status != models.WholesaleStatusNotFound {
		t.Fatalf("status = %q, want %q", view.Status, models.WholesaleStatusNotFound)
	}
	if view.RequestID != "" || view.RejectionReason != "" {
		t.Fatalf("not_found view should be empty: %+v", view)
	}
}

func TestStatusViewOfRejectedCarriesReason(t *testing.T) {
	req := &models.WholesaleRequest{
		ID:              uuid.NewString(),
		Status:          models.WholesaleStatusRejected,
		RejectionReason: "Register number could not be verified",
	}

	view := StatusViewOf(req)
	if view.Status != models.WholesaleStatusRejected {
		t.Fatalf("status = %q", view.Status)
	}
	if view.RejectionReason != req.RejectionReason {
		t.Fatalf("reason = %q", view.RejectionReason)
	}

	// The reason never leaks into other statuses
	req.Status = models.WholesaleStatusPending
	if view := StatusViewOf(req); view.RejectionReason != "" {
		t.Fatal("pending view must not carry a rejection reason")
	}
}

func TestValidRequestID(t *testing.T) {
	if !ValidRequestID(uuid.NewString()) {
		t.Fatal("valid uuid rejected")
	}
	for _, id := range []string{"", "123", "not-a-uuid", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		if ValidRequestID(id) {
			t.Fatalf("%q should be rejected", id)
		}
	}
}

func queueOf(ids ...string) []models.WholesaleQueueEntry {
	q := make([]models.WholesaleQueueEntry, 0, len(ids))
	for _, id := range ids {
		q = append(q, models.WholesaleQueueEntry{Request: models.WholesaleRequest{ID: id}})
	}
	return q
}

func TestApplyQueueEventRemovesEntry(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	queue := queueOf(a, b)

	next := ApplyQueueEvent(queue, QueueEvent{Type: QueueEventApproved, RequestID: a})
	if len(next) != 1 || next[0].Request.ID != b {
		t.Fatalf("unexpected queue: %v", next)
	}
}

func TestApplyQueueEventIsIdempotent(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	queue := queueOf(a, b)

	next := ApplyQueueEvent(queue, QueueEvent{Type: QueueEventRejected, RequestID: a})
	again := ApplyQueueEvent(next, QueueEvent{Type: QueueEventStale, RequestID: a})

	if len(again) != 1 || again[0].Request.ID != b {
		t.Fatalf("second removal changed the queue: %v", again)
	}
}

func TestApplyQueueEventUnknownTypeIsNoOp(t *testing.T) {
	a := uuid.NewString()
	queue := queueOf(a)

	next := ApplyQueueEvent(queue, QueueEvent{Type: "resubmitted", RequestID: a})
	if len(next) != 1 {
		t.Fatalf("unknown event must not mutate the queue: %v", next)
	}
}

func TestDefaultRejectionReason(t *testing.T) {
	if got := DefaultRejectionReason("  "); got == "" {
		t.Fatal("blank reason should get a default")
	}
	if got := DefaultRejectionReason("documents expired"); got != "documents expired" {
		t.Fatalf("explicit reason replaced: %q", got)
	}
}
