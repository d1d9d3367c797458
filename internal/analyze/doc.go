// Package analyze loads Go packages and checks xmlbind annotations
// without running the program.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to build
// an in-memory model of structs and their fields, then applies the same
// field rules as the runtime registry.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/interface/external)
//   - FieldInfo: describes field name, type, tags, embedding and position
//   - Checker: reports annotation and binding file mistakes as diagnostics
//   - Layout: the static rendering plan of one struct
package analyze
