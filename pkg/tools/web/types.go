package web

// FetchURLArgs represents arguments for the FetchURL operation
type FetchURLArgs struct {
	URL string `json:"url" jsonschema:"required,description=The http or https URL to fetch the content from."`
}

// FetchURLResponse represents the response for the FetchURL operation
type FetchURLResponse struct {
	Status    int    `json:"status"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}
