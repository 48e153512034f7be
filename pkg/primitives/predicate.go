// Package primitives holds small value types shared across the storage and
// execution layers that do not belong to any single package: comparison
// operators and join predicates.
package primitives

// Predicate is a comparison operator usable in a Filter or JoinPredicate.
type Predicate int

const (
	Equals Predicate = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="
	case NotEqual:
		return "<>"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case Like:
		return "LIKE"
	default:
		return "UNKNOWN"
	}
}
