// services/wholesale.go
package services

import (
	"strings"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
	"github.com/google/uuid"
)

// FieldError is a client-facing validation failure for one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmissionDocument describes one uploaded file after it has been read and
// sniffed, or its absence.
type SubmissionDocument struct {
	Present bool
	Size    int64
	MIME    string
}

// Submission is the parsed wholesale upgrade form.
type Submission struct {
	CompanyName        string
	CommercialRegister string
	TaxNumber          string
	IDDocument         SubmissionDocument
	CommercialDocument SubmissionDocument
}

// ValidateSubmission checks the form before anything touches storage.
// Every violation produces a field-specific message; an empty result means
// the submission may proceed.
func ValidateSubmission(s Submission) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(s.CompanyName) == "" {
		errs = append(errs, FieldError{Field: "company_name", Message: "Company name is required"})
	}
	if strings.TrimSpace(s.CommercialRegister) == "" {
		errs = append(errs, FieldError{Field: "commercial_register", Message: "Commercial register number is required"})
	}

	errs = append(errs, validateDocument("id_document", s.IDDocument)...)
	errs = append(errs, validateDocument("commercial_document", s.CommercialDocument)...)

	return errs
}

func validateDocument(field string, doc SubmissionDocument) []FieldError {
	if !doc.Present {
		return []FieldError{{Field: field, Message: "Document is required"}}
	}

	var errs []FieldError
	if doc.Size > utils.MaxDocumentSize {
		errs = append(errs, FieldError{Field: field, Message: "Document exceeds the 2 MB limit"})
	}
	switch doc.MIME {
	case "image/jpeg", "image/png", "application/pdf":
	default:
		errs = append(errs, FieldError{Field: field, Message: "Document must be a JPEG, PNG or PDF file"})
	}
	return errs
}

// StatusViewOf maps a stored request (or its absence) to the status the
// storefront shows. No request on file is not_found, never an error.
func StatusViewOf(req *models.WholesaleRequest) models.WholesaleStatusView {
	if req == nil {
		return models.WholesaleStatusView{Status: models.WholesaleStatusNotFound}
	}

	view := models.WholesaleStatusView{
		Status:    req.Status,
		RequestID: req.ID,
	}
	if req.Status == models.WholesaleStatusRejected {
		view.RejectionReason = req.RejectionReason
	}
	return view
}

// ValidRequestID rejects ids that are not UUID-shaped before any lookup
// happens. Stale or corrupted queue rows must never turn into queries.
func ValidRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Queue events. Decisions, deletions and stale references all collapse to
// the same pure transition: the entry leaves the pending queue.
const (
	QueueEventApproved = "approved"
	QueueEventRejected = "rejected"
	QueueEventDeleted  = "deleted"
	QueueEventStale    = "stale" // server said 404/already processed
)

// QueueEvent is something that happened to one entry of the pending queue.
type QueueEvent struct {
	Type      string
	RequestID string
}

// ApplyQueueEvent returns the pending queue after an event. Removing an id
// that is no longer present is a no-op, which is what makes double
// decisions harmless to the view.
func ApplyQueueEvent(queue []models.WholesaleQueueEntry, ev QueueEvent) []models.WholesaleQueueEntry {
	switch ev.Type {
	case QueueEventApproved, QueueEventRejected, QueueEventDeleted, QueueEventStale:
	default:
		return queue
	}

	next := make([]models.WholesaleQueueEntry, 0, len(queue))
	for _, entry := range queue {
		if entry.Request.ID == ev.RequestID {
			continue
		}
		next = append(next, entry)
	}
	return next
}

// DefaultRejectionReason fills in the reason when an admin rejects without
// giving one.
func DefaultRejectionReason(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "Your request did not meet the wholesale account requirements"
	}
	return reason
}

// NewRequestID mints the server-assigned id for a submission.
func NewRequestID() string {
	return uuid.NewString()
}
