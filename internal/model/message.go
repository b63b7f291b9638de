package model

// EmailMessage is an outbound email handed to the mail transport.
type EmailMessage struct {
	Recipients []string
	Subject    string
	Body       string
}

// DraftRequest holds the structured fields used to ask for a marketing email draft.
type DraftRequest struct {
	CompanyName       string `json:"companyName"`
	Purpose           string `json:"purpose"`
	TriggerType       string `json:"triggerType"`
	AdditionalDetails string `json:"additionalDetails"`
}
