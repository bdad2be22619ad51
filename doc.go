// Package tagskema validates Go structs described by struct tags, generates
// JSON Schema for them, accumulates streamed JSON objects and resolves
// discriminated unions.
//
// Constraints live in the `validate` tag (configurable with WithTagKey):
//
//	type Order struct {
//		ID    string   `json:"id" validate:"required,uuid4"`
//		Email string   `json:"email" validate:"required,email"`
//		Items []Item   `json:"items" validate:"min=1,max=50,dive"`
//		Tags  []string `json:"tags" validate:"max=5,dive,min=2"`
//	}
//
// A Validator caches one immutable descriptor per type. Validate checks an
// existing value; Unmarshal and UnmarshalAndValidate also know which keys were
// present, so they report missing required fields, apply defaults and enforce
// the extra-field policy. Every failure is collected into Issues, each with a
// dotted path such as items[2].price.
//
//	v := tagskema.New(tagskema.WithExtraFields(tagskema.ExtraReject))
//	order, err := tagskema.UnmarshalAndValidate[Order](v, data)
//	if iss, ok := tagskema.AsIssues(err); ok {
//		for _, it := range iss {
//			log.Printf("%s: %s", it.Path, it.Message)
//		}
//	}
//
// Schema, SchemaJSON and SchemaYAML render the same descriptors as JSON Schema
// 2020-12. StreamAccumulator buffers chunks until they form one complete
// object. UnionResolver picks a concrete type by discriminator value.
//
// Design policy:
//   - Keep public APIs in the root package; implementations live under internal/.
//   - Tag parsing is in constraint/, named string formats in format/, schema
//     document types in jsonschema/ and messages in i18n/.
package tagskema
