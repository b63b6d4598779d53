package railz

import (
	"reflect"
	"sync"
)

var (
	// typeCache stores the string form of types to avoid repeated reflection.
	typeCache = make(map[reflect.Type]string)
	cacheMu   sync.RWMutex
)

// typeName returns the cached string representation of T. Safe for
// concurrent use.
func typeName[T any]() string {
	typ := reflect.TypeFor[T]()

	cacheMu.RLock()
	if name, ok := typeCache[typ]; ok {
		cacheMu.RUnlock()
		return name
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	// Double-check after acquiring write lock
	if name, ok := typeCache[typ]; ok {
		return name
	}

	name := typ.String()
	typeCache[typ] = name
	return name
}

// Signature names the context and result types of a finisher. The types
// themselves are resolved at compile time by Finish; Signature only exists
// so they can be reported, for example as span tags.
type Signature struct {
	Context string
	Result  string
}

// SignatureOf returns the Signature for a finisher over context C that
// produces R.
func SignatureOf[C, R any]() Signature {
	return Signature{
		Context: typeName[C](),
		Result:  typeName[R](),
	}
}

// String renders the signature as a function type, e.g. "func(*main.Order) float64".
func (s Signature) String() string {
	return "func(*" + s.Context + ") " + s.Result
}
