package notify

// Filter decides whether a subscriber wants to see a given event.
// Filtering is evaluated before rate limiting; filtered events do not
// count toward a subscriber's rate-limit window or delivery statistics,
// other than an optional Filtered counter (spec.md §4.1).
type Filter[T any] interface {
	Accept(event T) bool
}

// FilterFunc adapts a plain function to a Filter.
type FilterFunc[T any] func(event T) bool

func (f FilterFunc[T]) Accept(event T) bool { return f(event) }

type acceptAll[T any] struct{}

func (acceptAll[T]) Accept(T) bool { return true }

type acceptNone[T any] struct{}

func (acceptNone[T]) Accept(T) bool { return false }

// AcceptAll returns a Filter that admits every event.
func AcceptAll[T any]() Filter[T] { return acceptAll[T]{} }

// AcceptNone returns a Filter that admits no events.
func AcceptNone[T any]() Filter[T] { return acceptNone[T]{} }
