package transfer

type LinkedInUserInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterUploadRequest struct {
	RegisterUploadRequest RegisterUploadBody `json:"registerUploadRequest"`
}

type RegisterUploadBody struct {
	Recipes              []string              `json:"recipes"`
	Owner                string                `json:"owner"`
	ServiceRelationships []ServiceRelationship `json:"serviceRelationships"`
}

type ServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type RegisterUploadResponse struct {
	Value struct {
		UploadMechanism struct {
			MediaUploadHTTPRequest struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
		Asset string `json:"asset"`
	} `json:"value"`
}

type ShareCommentary struct {
	Text string `json:"text"`
}

type ShareMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

type ShareContent struct {
	ShareCommentary    ShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
	Media              []ShareMedia    `json:"media,omitempty"`
}

type UGCPostRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]ShareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type UGCPostResponse struct {
	ID string `json:"id"`
}

type LinkedInErrorResponse struct {
	Message          string `json:"message"`
	ServiceErrorCode int    `json:"serviceErrorCode"`
	Status           int    `json:"status"`
}

type PostAnalyticsResponse struct {
	Elements []struct {
		Count int `json:"count"`
	} `json:"elements"`
}

// PostStats carries one fetched metric set. Nil fields are metrics the
// analytics API did not return; existing values are kept for those.
type PostStats struct {
	Views    *int `json:"views"`
	Likes    *int `json:"likes"`
	Comments *int `json:"comments"`
	Shares   *int `json:"shares"`
}

type AccountStatus struct {
	Connected  bool   `json:"connected"`
	Expired    bool   `json:"expired,omitempty"`
	Name       string `json:"name,omitempty"`
	LinkedInID string `json:"linkedin_id,omitempty"`
}
