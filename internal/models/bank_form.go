package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// BankForm represents one bank-form checklist entry on a case. A row exists
// for every required kind from creation; uploads flip it to uploaded,
// deletion resets it to missing.
type BankForm struct {
	ID         uuid.UUID             `json:"id" db:"id"`
	CaseID     uuid.UUID             `json:"case_id" db:"case_id"`
	Kind       pipeline.BankFormKind `json:"kind" db:"kind"`
	Status     pipeline.FormStatus   `json:"status" db:"status"`
	FileKey    NullString            `json:"file_key,omitempty" db:"file_key"`
	FileName   NullString            `json:"file_name,omitempty" db:"file_name"`
	UploadedAt NullTime              `json:"uploaded_at,omitempty" db:"uploaded_at"`
	CreatedAt  time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at" db:"updated_at"`
}

// Document represents one document checklist entry on a client.
type Document struct {
	ID         uuid.UUID             `json:"id" db:"id"`
	ClientID   uuid.UUID             `json:"client_id" db:"client_id"`
	Kind       pipeline.DocumentKind `json:"kind" db:"kind"`
	Status     pipeline.FormStatus   `json:"status" db:"status"`
	FileKey    NullString            `json:"file_key,omitempty" db:"file_key"`
	FileName   NullString            `json:"file_name,omitempty" db:"file_name"`
	UploadedAt NullTime              `json:"uploaded_at,omitempty" db:"uploaded_at"`
	CreatedAt  time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at" db:"updated_at"`
}
