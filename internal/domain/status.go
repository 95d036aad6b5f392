package domain

// Status is the lifecycle state of an order. Values are stored as-is in the
// database and shown in the dashboard, so they must stay stable.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// AllStatuses returns the full enumeration in display order.
func AllStatuses() []Status {
	return []Status{
		StatusNew,
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusCompleted,
		StatusCanceled,
	}
}

// transitions is the single source of truth for legal status changes.
// Every caller, including the cancel shortcut, must go through it.
var transitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusPreparing, StatusCanceled},
	StatusPreparing: {StatusReady, StatusCanceled},
	StatusReady:     {StatusCompleted, StatusCanceled},
	StatusCompleted: {},
	StatusCanceled:  {},
}

// ParseStatus maps a raw string onto the enumeration. The second return is
// false for values outside of it.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether target is a legal next status. It is total
// over arbitrary values: unknown statuses on either side yield false.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal successor set, useful for rendering the
// action buttons on the order detail view.
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
