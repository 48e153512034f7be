package primitives

// JoinPredicate names the two fields (by index into each side's TupleDesc)
// and the comparison operator a Join evaluates between them.
type JoinPredicate struct {
	LeftField  int
	Op         Predicate
	RightField int
}

func NewJoinPredicate(leftField int, op Predicate, rightField int) JoinPredicate {
	return JoinPredicate{LeftField: leftField, Op: op, RightField: rightField}
}
