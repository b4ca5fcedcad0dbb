package transfer

import "net/http"

// PlatformSession is an authenticated session against a publishing platform.
type PlatformSession struct {
	UserID        string
	Username      string
	Authorization string
	Cookies       []*http.Cookie
}

type InstagramLoginResponse struct {
	Status       string `json:"status"`
	LoggedInUser struct {
		PK       int64  `json:"pk"`
		Username string `json:"username"`
	} `json:"logged_in_user"`
}

type InstagramDeleteResponse struct {
	Status    string `json:"status"`
	DidDelete bool   `json:"did_delete"`
}

type InstagramErrorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Error     struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Reason returns the most specific message the platform gave.
func (r InstagramErrorResponse) Reason() string {
	switch {
	case r.Error.Message != "":
		return r.Error.Message
	case r.Message != "":
		return r.Message
	case r.ErrorType != "":
		return r.ErrorType
	}
	return "unknown error"
}
