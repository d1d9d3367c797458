// Package binding provides the binding-file schema, parsing, validation
// and its application to a descriptor.Registry.
//
// A binding file annotates types the caller cannot (or does not want to)
// tag, and carries the serializer settings, so the same Go types can be
// rendered differently without recompiling.
//
// # Schema Overview
//
//	version: "1"
//	settings:
//	  declaration: true     # emit the XML declaration
//	  self_close: true      # <a /> for empty elements
//	  max_depth: 512        # nesting guard
//	  tag_key: xmlbind      # struct tag key read by the registry
//	types:
//	  xmlbind/examples/calendar.Extra:
//	    root: extra
//	    fields:
//	      Week: attribute,rename=week   # replaces the struct tag
//	      Century: "-"
//	  xmlbind/examples/calendar.DateKind:
//	    variants:
//	      Working: workday              # variant tag -> element name
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas; everything else is read as YAML.
//
// # Priority Order
//
// A field entry replaces the struct tag of that field entirely. A root
// entry wins over a descriptor.Root field. A variant entry wins over the
// name given at union registration.
package binding
