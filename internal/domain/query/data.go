package query

// Data is the update payload of Update, UpdateMany and Upsert, keyed by
// field name. Values are plain values, Null, or an atomic Op.
type Data map[string]any

// OpKind is an atomic numeric update
type OpKind string

const (
	OpSet       OpKind = "set"
	OpIncrement OpKind = "increment"
	OpDecrement OpKind = "decrement"
	OpMultiply  OpKind = "multiply"
	OpDivide    OpKind = "divide"
)

// Op is an update operation evaluated by the database against the current
// column value, so concurrent updates do not lose writes.
type Op struct {
	Kind  OpKind
	Value any
}

// Set assigns v
func Set(v any) Op { return Op{Kind: OpSet, Value: v} }

// Increment adds v to a numeric field
func Increment(v any) Op { return Op{Kind: OpIncrement, Value: v} }

// Decrement subtracts v from a numeric field
func Decrement(v any) Op { return Op{Kind: OpDecrement, Value: v} }

// Multiply multiplies a numeric field by v
func Multiply(v any) Op { return Op{Kind: OpMultiply, Value: v} }

// Divide divides a numeric field by v
func Divide(v any) Op { return Op{Kind: OpDivide, Value: v} }
