package jsonschema

// Clone returns a deep copy of s. Values held in any-typed keywords are copied
// when they are JSON-shaped (maps, slices, scalars, nested schemas).
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Defs = cloneMap(s.Defs)
	out.Default = cloneAny(s.Default)
	out.Examples = cloneSlice(s.Examples)
	out.Enum = cloneSlice(s.Enum)
	out.Const = cloneAny(s.Const)
	out.Not = s.Not.Clone()
	out.MinLength = cloneInt(s.MinLength)
	out.MaxLength = cloneInt(s.MaxLength)
	out.Minimum = cloneFloat(s.Minimum)
	out.Maximum = cloneFloat(s.Maximum)
	out.ExclusiveMinimum = cloneFloat(s.ExclusiveMinimum)
	out.ExclusiveMaximum = cloneFloat(s.ExclusiveMaximum)
	out.MultipleOf = cloneFloat(s.MultipleOf)
	out.Properties = cloneMap(s.Properties)
	out.Required = cloneStrings(s.Required)
	out.AdditionalProperties = cloneAny(s.AdditionalProperties)
	out.PropertyNames = s.PropertyNames.Clone()
	out.MinProperties = cloneInt(s.MinProperties)
	out.MaxProperties = cloneInt(s.MaxProperties)
	if s.DependentRequired != nil {
		out.DependentRequired = make(map[string][]string, len(s.DependentRequired))
		for k, v := range s.DependentRequired {
			out.DependentRequired[k] = cloneStrings(v)
		}
	}
	out.Items = s.Items.Clone()
	out.MinItems = cloneInt(s.MinItems)
	out.MaxItems = cloneInt(s.MaxItems)
	out.AllOf = cloneSchemas(s.AllOf)
	out.OneOf = cloneSchemas(s.OneOf)
	out.If = s.If.Clone()
	out.Then = s.Then.Clone()
	out.Else = s.Else.Clone()
	if s.Discriminator != nil {
		d := *s.Discriminator
		if d.Mapping != nil {
			d.Mapping = make(map[string]string, len(s.Discriminator.Mapping))
			for k, v := range s.Discriminator.Mapping {
				d.Mapping[k] = v
			}
		}
		out.Discriminator = &d
	}
	out.XConstraints = cloneStrings(s.XConstraints)
	return &out
}

func cloneMap(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

func cloneSchemas(in []*Schema) []*Schema {
	if in == nil {
		return nil
	}
	out := make([]*Schema, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

func cloneAny(v any) any {
	switch x := v.(type) {
	case *Schema:
		return x.Clone()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneAny(e)
		}
		return out
	case []any:
		return cloneSlice(x)
	case []string:
		return cloneStrings(x)
	default:
		return v
	}
}

func cloneSlice(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneAny(v)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}
