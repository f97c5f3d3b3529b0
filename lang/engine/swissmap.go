package engine

import "github.com/dolthub/swiss"

// swissMap is a thin wrapper around dolthub/swiss.Map[string, Value], used
// both by ScopeValue (first-class scope fields) and by Frame (lexical scope
// chain variables). Using an open-addressing map here follows the teacher's
// own choice for its Map value type (lang/machine/map.go); identifier
// resolution in deeply nested loops and function calls is the hottest path
// in the evaluator, and swiss.Map avoids the bucket-chasing of the builtin
// map on the lookup-heavy, rarely-deleted workload scope frames see.
type swissMap struct {
	m *swiss.Map[string, Value]
}

func newSwissMap() *swissMap {
	return &swissMap{m: swiss.NewMap[string, Value](8)}
}

func (s *swissMap) Get(key string) (Value, bool) {
	return s.m.Get(key)
}

func (s *swissMap) Put(key string, v Value) {
	s.m.Put(key, v)
}

func (s *swissMap) Has(key string) bool {
	return s.m.Has(key)
}

func (s *swissMap) Len() int {
	return s.m.Count()
}
