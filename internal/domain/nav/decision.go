package nav

import "net/url"

// DecisionKind tags the outcome of a guard decision.
type DecisionKind int

const (
	// DecisionAllow lets the navigation proceed.
	DecisionAllow DecisionKind = iota
	// DecisionRedirect sends the navigation elsewhere.
	DecisionRedirect
	// DecisionDeny aborts the navigation.
	DecisionDeny
	// DecisionBootstrap asks the guard to run the session bootstrap first.
	// It is internal to the guard and never handed to a router.
	DecisionBootstrap
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	case DecisionDeny:
		return "deny"
	case DecisionBootstrap:
		return "bootstrap"
	default:
		return "unknown"
	}
}

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message surfaced to the user alongside a decision.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Decision is the result of guarding one navigation.
type Decision struct {
	Kind   DecisionKind
	Target RouteRequest
	Notice *Notice
	// EndProgress ends the navigation progress signal as soon as the decision is applied.
	EndProgress bool
	// ImportToken is set when the target carried a session token to persist.
	ImportToken string
}

// Allow returns an allow decision.
func Allow() Decision { return Decision{Kind: DecisionAllow} }

// Deny returns a deny decision.
func Deny() Decision { return Decision{Kind: DecisionDeny} }

// RedirectTo returns a redirect decision to target.
func RedirectTo(target RouteRequest) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// RedirectPath returns a redirect decision to a bare path.
func RedirectPath(path string) Decision {
	return RedirectTo(RouteRequest{Path: path})
}

// ReplaceWith returns a redirect that re-resolves target in place of the current entry.
func ReplaceWith(target RouteRequest) Decision {
	target.Replace = true
	target.Query = cloneQuery(target.Query)
	return RedirectTo(target)
}

// WithNotice attaches a notice to the decision.
func (d Decision) WithNotice(level NoticeLevel, message string) Decision {
	d.Notice = &Notice{Level: level, Message: message}
	return d
}

// Ending marks the decision as ending the progress signal.
func (d Decision) Ending() Decision {
	d.EndProgress = true
	return d
}

func cloneQuery(q url.Values) url.Values {
	if q == nil {
		return nil
	}
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
