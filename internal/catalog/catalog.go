// Package catalog holds the compiled-in default task sets used to
// materialize daily checklists when an apartment has no custom templates
// enabled.
package catalog

// Entry is a single catalog task.
type Entry struct {
	Name        string
	Description string
}

// LightSet is a reduced checklist kept for apartments that prefer a quick
// daily pass. Not currently selectable over the API; DeepCleanSet is the
// active default.
var LightSet = []Entry{
	{Name: "Dust the surfaces"},
	{Name: "Pick up loose items"},
	{Name: "Air out the rooms"},
}

// DeepCleanSet is the default checklist materialized for a claimed day.
var DeepCleanSet = []Entry{
	{Name: "Sweep and mop the floors"},
	{Name: "Take out the trash"},
	{Name: "Wash the dishes"},
	{Name: "Tidy the bedroom"},
	{Name: "Clean the toilet and bathroom"},
	{Name: "Clean up the kitchen"},
}

// Default returns the catalog entries used when use_default_tasks is on.
func Default() []Entry {
	return DeepCleanSet
}
