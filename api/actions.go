package api

// Wire types for the Solana Actions schema, per
// https://github.com/dialectlabs/actions/blob/main/spec/actions-spec.ts

// ActionGetResponse is the discovery payload a wallet renders as a blink.
type ActionGetResponse struct {
	Icon        string       `json:"icon"`
	Label       string       `json:"label"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Disabled    bool         `json:"disabled"`
	Links       *ActionLinks `json:"links,omitempty"`
}

// ActionLinks groups the linked actions of a discovery payload.
type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction is one call-to-action button, optionally with a single input
// parameter.
type LinkedAction struct {
	Href       string            `json:"href"`
	Label      string            `json:"label"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

// ActionParameter is a free-input field substituted into the href.
type ActionParameter struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// ActionPostRequest is the signing request body sent by wallets.
type ActionPostRequest struct {
	Account string `json:"account"`
}

// ActionPostResponse carries the unsigned transaction back for signing.
type ActionPostResponse struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message,omitempty"`
}

// ActionError is the uniform error body for non-200 responses.
type ActionError struct {
	Message string `json:"message"`
}
