package handlers

import (
	"github.com/DropShort/Short-File-Service/internal/services/command"
	"github.com/DropShort/Short-File-Service/internal/services/query"
)

// Handler holds the pipelines behind the two routes. Constructed once in
// main and shared by reference.
type Handler struct {
	Uploader  *command.Uploader
	Retriever *query.Retriever

	// UploadToken lets GET on the secret path answer with the upload
	// prompt instead of a failed link lookup.
	UploadToken string
}
