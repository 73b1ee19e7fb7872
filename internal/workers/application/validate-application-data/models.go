// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"application-builder/internal/builder/validate"
	"application-builder/internal/models"
)

type Input struct {
	ApplicationData models.ApplicationData `json:"applicationData"`
	// Contact details are optional; when present they must be well formed.
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

type Output struct {
	IsValid          bool                 `json:"isValid"`
	ValidationErrors []validate.Violation `json:"validationErrors"`
}
