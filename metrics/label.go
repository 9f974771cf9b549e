package metrics

import (
	"maps"
	"sort"
	"sync"
)

// LabelValue is a mapping of keys to values
type LabelValue map[string]any

// LabelSnapshot is a read-only copy of a Label.
type LabelSnapshot LabelValue

// Value returns the value at the time the snapshot was taken.
func (l LabelSnapshot) Value() LabelValue { return LabelValue(l) }

// Label is the standard implementation of a Label.
type Label struct {
	value LabelValue

	mutex sync.Mutex
}

// labels holds every registered Label by name. Labels live beside the
// go-metrics registry since it only stores its own metric types.
var labels sync.Map

// GetOrRegisterLabel returns an existing Label or constructs and registers a
// new Label.
func GetOrRegisterLabel(name string) *Label {
	l, _ := labels.LoadOrStore(name, NewLabel())
	return l.(*Label)
}

// EachLabel calls fn for every registered label in name order.
func EachLabel(fn func(name string, l *Label)) {
	var names []string
	labels.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	for _, name := range names {
		l, _ := labels.Load(name)
		fn(name, l.(*Label))
	}
}

// NewLabel constructs a new Label.
func NewLabel() *Label {
	return &Label{value: make(map[string]any)}
}

// Snapshot returns a copy of the current label values.
func (l *Label) Snapshot() LabelSnapshot {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return LabelSnapshot(maps.Clone(l.value))
}

// Mark records the label.
func (l *Label) Mark(value map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	maps.Copy(l.value, value)
}
