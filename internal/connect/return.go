package connect

import (
	"fmt"
	"net/url"
)

// Return codes the provider callback may carry. The set is closed: anything
// outside it maps to a generic message that still surfaces the raw code.
const (
	ReturnCodeDenied          = "oauth_denied"
	ReturnCodeExpired         = "oauth_expired"
	ReturnCodeInvalidState    = "invalid_state"
	ReturnCodeExchangeFailed  = "token_exchange_failed"
	ReturnCodeProviderFailure = "provider_error"
)

var returnMessages = map[string]string{
	ReturnCodeDenied:          "OAuth authorization was denied.",
	ReturnCodeExpired:         "The authorization request expired. Please try connecting again.",
	ReturnCodeInvalidState:    "The authorization response could not be verified. Please try connecting again.",
	ReturnCodeExchangeFailed:  "The provider rejected the token exchange. Please try connecting again.",
	ReturnCodeProviderFailure: "The provider reported an error. Please try connecting again.",
}

// ReturnResult is the outcome of one provider callback. It is consumed
// exactly once and always carries the address of the integrations view to
// redirect to afterwards.
type ReturnResult struct {
	Success    bool
	Provider   string
	Code       string
	Message    string
	RedirectTo string
}

// HandleReturn interprets the query parameters the provider callback carried.
// It is an independent entry point correlated to the original attempt only by
// the server-issued state token; it never touches the in-memory Flow, which
// was abandoned at the redirect.
func HandleReturn(params url.Values, integrationsView string) ReturnResult {
	result := ReturnResult{
		Provider:   params.Get("provider"),
		RedirectTo: integrationsView,
	}

	if code := params.Get("error"); code != "" {
		result.Code = code
		if msg, known := returnMessages[code]; known {
			result.Message = msg
		} else {
			result.Message = fmt.Sprintf("Connection failed (%s). Please try connecting again.", code)
		}
		return result
	}

	if params.Get("success") == "true" {
		result.Success = true
		if result.Provider != "" {
			result.Message = fmt.Sprintf("Successfully connected to %s.", result.Provider)
		} else {
			result.Message = "Successfully connected."
		}
		return result
	}

	// Neither a success flag nor an error code: treat as an unverifiable
	// callback rather than guessing an outcome.
	result.Code = ReturnCodeInvalidState
	result.Message = returnMessages[ReturnCodeInvalidState]
	return result
}
