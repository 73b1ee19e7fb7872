// pkg/registry/defaults.go
package registry

const defaultVersion = "1.0.0"

func object(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str() map[string]interface{} { return map[string]interface{}{"type": "string"} }

func nonEmpty() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

func stringArray() map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": str()}
}

var portfolioItemSchema = object([]string{"id", "title"}, map[string]interface{}{
	"id":              nonEmpty(),
	"title":           str(),
	"description":     str(),
	"technologies":    stringArray(),
	"relevance_score": map[string]interface{}{"type": "number"},
	"url":             str(),
})

var jobSchema = object([]string{"id", "title", "company"}, map[string]interface{}{
	"id":       nonEmpty(),
	"title":    str(),
	"company":  str(),
	"category": str(),
	"skills":   stringArray(),
	"location": str(),
})

// DefaultRegistry describes the workers compiled into builder-manager.
func DefaultRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: defaultVersion,
		Activities: []Activity{
			{
				ID:          "select-template",
				DisplayName: "Select Cover Letter Template",
				Description: "Chooses or recommends a template for the job and populates the cover letter",
				Category:    "application",
				Version:     defaultVersion,
				TaskType:    "select-template",
				InputSchema: object([]string{"job"}, map[string]interface{}{
					"templateId":     str(),
					"job":            jobSchema,
					"portfolioItems": map[string]interface{}{"type": "array", "items": portfolioItemSchema},
					"userName":       str(),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "TEMPLATE_NOT_FOUND"},
				Timeout:    "5s",
				Tags:       []string{"template", "cover-letter"},
			},
			{
				ID:          "rank-portfolio-items",
				DisplayName: "Rank Portfolio Items",
				Description: "Orders portfolio items by relevance score",
				Category:    "application",
				Version:     defaultVersion,
				TaskType:    "rank-portfolio-items",
				InputSchema: object(nil, map[string]interface{}{
					"items":    map[string]interface{}{"type": "array", "items": portfolioItemSchema},
					"maxItems": map[string]interface{}{"type": "integer", "minimum": 0},
				}),
				ErrorCodes: []string{"INVALID_INPUT"},
				Timeout:    "5s",
				Tags:       []string{"portfolio"},
			},
			{
				ID:          "validate-application-data",
				DisplayName: "Validate Application Data",
				Description: "Checks the cover letter and contact details before submission",
				Category:    "application",
				Version:     defaultVersion,
				TaskType:    "validate-application-data",
				InputSchema: object([]string{"applicationData"}, map[string]interface{}{
					"applicationData": object(nil, map[string]interface{}{
						"cover_letter":             str(),
						"selected_portfolio_items": stringArray(),
						"additional_notes":         str(),
						"custom_resume":            map[string]interface{}{"type": []string{"string", "null"}},
					}),
					"contactEmail": str(),
					"contactPhone": str(),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "APPLICATION_VALIDATION_FAILED"},
				Timeout:    "5s",
				Tags:       []string{"validation"},
			},
			{
				ID:          "create-application-record",
				DisplayName: "Create Application Record",
				Description: "Persists the application and its portfolio selection",
				Category:    "application",
				Version:     defaultVersion,
				TaskType:    "create-application-record",
				InputSchema: object([]string{"jobId", "studentId", "coverLetter"}, map[string]interface{}{
					"jobId":                  nonEmpty(),
					"studentId":              nonEmpty(),
					"coverLetter":            nonEmpty(),
					"customResume":           map[string]interface{}{"type": []string{"string", "null"}},
					"selectedPortfolioItems": stringArray(),
					"additionalNotes":        str(),
				}),
				ErrorCodes: []string{"INVALID_INPUT", "JOB_NOT_FOUND", "DUPLICATE_APPLICATION", "DATABASE_INSERT_FAILED"},
				Timeout:    "10s",
				Retries:    3,
				Tags:       []string{"postgres"},
			},
			{
				ID:          "send-notification",
				DisplayName: "Send Notification",
				Description: "Notifies the recipient by email and, for high priority, SMS",
				Category:    "communication",
				Version:     defaultVersion,
				TaskType:    "send-notification",
				InputSchema: object([]string{"recipientId", "notificationType"}, map[string]interface{}{
					"recipientId": nonEmpty(),
					"notificationType": nonEmpty(),
					"applicationId": str(),
					"jobTitle":      str(),
					"companyName":   str(),
					"priority":      str(),
					"metadata":      map[string]interface{}{"type": "object"},
				}),
				ErrorCodes: []string{"INVALID_INPUT", "RECIPIENT_NOT_FOUND", "NOTIFICATION_SEND_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Tags:       []string{"ses", "sns"},
			},
		},
	}
}
