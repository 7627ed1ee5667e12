// models/wholesale_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wholesale request statuses. NotFound is never stored; it is the status
// reported to a user who has no request on file.
const (
	WholesaleStatusNotFound = "not_found"
	WholesaleStatusPending  = "pending"
	WholesaleStatusApproved = "approved"
	WholesaleStatusRejected = "rejected"
)

// WholesaleRequest is an account-upgrade request awaiting admin review.
// The _id is a server-assigned UUID string.
type WholesaleRequest struct {
	ID                       string             `json:"id" bson:"_id"`
	UserID                   primitive.ObjectID `json:"userId" bson:"userId"`
	CompanyName              string             `json:"companyName" bson:"companyName"`
	CommercialRegisterNumber string             `json:"commercialRegisterNumber" bson:"commercialRegisterNumber"`
	TaxNumber                string             `json:"taxNumber,omitempty" bson:"taxNumber,omitempty"`
	IDDocumentURL            string             `json:"idDocumentUrl" bson:"idDocumentUrl"`
	CommercialDocumentURL    string             `json:"commercialDocumentUrl" bson:"commercialDocumentUrl"`
	IDDocumentThumbURL       string             `json:"idDocumentThumbUrl,omitempty" bson:"idDocumentThumbUrl,omitempty"`
	CommercialDocThumbURL    string             `json:"commercialDocumentThumbUrl,omitempty" bson:"commercialDocumentThumbUrl,omitempty"`
	Status                   string             `json:"status" bson:"status"`
	RejectionReason          string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ReviewedBy               primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	CreatedAt                time.Time          `json:"createdAt" bson:"createdAt"`
	ProcessedAt              time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
}

// WholesaleStatusView is what the storefront sees when it asks "what is my
// upgrade status". A missing request maps to not_found, never to an error.
type WholesaleStatusView struct {
	Status          string `json:"status"`
	RequestID       string `json:"requestId,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// WholesaleDecisionRequest is the admin approve/reject body.
type WholesaleDecisionRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// WholesaleQueueEntry is one row of the admin pending queue, enriched with
// the requesting user's contact details.
type WholesaleQueueEntry struct {
	Request  WholesaleRequest `json:"request"`
	Email    string           `json:"email"`
	FullName string           `json:"fullName"`
	Phone    string           `json:"phone,omitempty"`
}
