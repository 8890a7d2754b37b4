package protocol

import "sort"

// Registry maps (peripheral, command, direction) to a schema. Populate it
// during startup; after that it is safe for concurrent reads. Register is
// not synchronized.
type Registry struct {
	items map[Key]*CommandSchema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[Key]*CommandSchema)}
}

// Register adds schema. Existing keys are never overwritten.
func (r *Registry) Register(schema *CommandSchema) error {
	if schema == nil {
		return &SchemaError{Schema: "<nil>", Reason: "schema is nil"}
	}
	if _, ok := r.items[schema.key]; ok {
		return &DuplicateSchemaError{Key: schema.key}
	}
	r.items[schema.key] = schema
	return nil
}

// MustRegister registers every schema and panics on the first error.
func (r *Registry) MustRegister(schemas ...*CommandSchema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the schema registered for the key parts.
func (r *Registry) Lookup(peripheral, command uint8, dir Direction) (*CommandSchema, error) {
	return r.LookupKey(Key{Peripheral: peripheral, Command: command, Direction: dir})
}

// LookupKey is Lookup with a prebuilt key.
func (r *Registry) LookupKey(key Key) (*CommandSchema, error) {
	s, ok := r.items[key]
	if !ok {
		return nil, &UnknownCommandError{Key: key}
	}
	return s, nil
}

// Find returns the schema with the given name and direction. Names are not
// unique keys; when several schemas share one, the lowest key wins.
func (r *Registry) Find(name string, dir Direction) (*CommandSchema, bool) {
	for _, s := range r.Schemas() {
		if s.name == name && s.key.Direction == dir {
			return s, true
		}
	}
	return nil, false
}

// Schemas returns every schema ordered by peripheral, command, direction.
func (r *Registry) Schemas() []*CommandSchema {
	list := make([]*CommandSchema, 0, len(r.items))
	for _, s := range r.items {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].key.less(list[j].key)
	})
	return list
}

// Len reports the number of registered schemas.
func (r *Registry) Len() int { return len(r.items) }

// Encode looks up key and encodes values with the matching schema.
func (r *Registry) Encode(key Key, values Values) ([]byte, error) {
	s, err := r.LookupKey(key)
	if err != nil {
		return nil, err
	}
	return Encode(s, values)
}

// Decode looks up key and decodes data with the matching schema.
func (r *Registry) Decode(key Key, data []byte) (Values, error) {
	s, err := r.LookupKey(key)
	if err != nil {
		return nil, err
	}
	return Decode(s, data)
}
