package authz

// Reason explains a denial.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonNotFound        Reason = "not_found"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason, msg string) Decision {
	return Decision{Reason: reason, Message: msg}
}

// Err converts a denial into the error taxonomy. It returns nil when allowed.
func (d Decision) Err(kind Kind) error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return Unauthenticated(d.Message)
	case ReasonNotFound:
		return NotFoundKind(kind)
	default:
		return Forbidden(d.Message)
	}
}

func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return "deny(" + string(d.Reason) + ")"
}
