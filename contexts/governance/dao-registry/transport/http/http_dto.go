package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterOrganizationRequest struct {
	OrgID       string `json:"org_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type UpdateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type OrganizationResponse struct {
	OrgID             string `json:"org_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	URL               string `json:"url,omitempty"`
	Owner             string `json:"owner"`
	Active            bool   `json:"active"`
	RegisteredAtEpoch uint64 `json:"registered_at_epoch"`
}

type OrganizationListResponse struct {
	Items []OrganizationResponse `json:"items"`
}
