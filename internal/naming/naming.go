// Package naming converts free-form XyronQ metadata names into valid C#
// identifiers for the contract generator.
//
// All functions are pure, stateless and total over printable input: an
// unrecognized parameter type or an exotic name never errors, it falls
// back to a safe representation.
package naming

import "strings"

// ToPascalCase splits name on any run of non-alphanumeric characters,
// drops empty tokens, upper-cases the first character of each remaining
// token and concatenates. "Storage.Slotting" -> "StorageSlotting".
func ToPascalCase(name string) string {
	var b strings.Builder
	startOfToken := true
	for _, r := range name {
		if !isAlphanumeric(r) {
			startOfToken = true
			continue
		}
		if startOfToken && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
		startOfToken = false
	}
	return b.String()
}

// ToCamelCase is PascalCase with the first character lower-cased.
func ToCamelCase(name string) string {
	pascal := ToPascalCase(name)
	if pascal == "" {
		return ""
	}
	if c := pascal[0]; c >= 'A' && c <= 'Z' {
		return string(c+'a'-'A') + pascal[1:]
	}
	return pascal
}

// ToNamespaceSegment derives a C# namespace segment from a domain name.
// "Failure.Resolution" -> "FailureResolution".
func ToNamespaceSegment(domainName string) string {
	return ToPascalCase(domainName)
}

// ToCSharpType maps the parameter type enum to a C# primitive. Unknown
// types fall back to object rather than erroring.
func ToCSharpType(paramType string) string {
	switch paramType {
	case "bool":
		return "bool"
	case "int":
		return "int"
	case "decimal":
		return "decimal"
	case "string":
		return "string"
	case "enum":
		return "string"
	default:
		return "object"
	}
}

// csharpReserved holds the C# keyword set. Pascal-cased names whose
// lower-cased form collides are escaped with the @ verbatim prefix.
var csharpReserved = map[string]struct{}{
	"abstract": {}, "as": {}, "base": {}, "bool": {}, "break": {}, "byte": {},
	"case": {}, "catch": {}, "char": {}, "checked": {}, "class": {}, "const": {},
	"continue": {}, "decimal": {}, "default": {}, "delegate": {}, "do": {},
	"double": {}, "else": {}, "enum": {}, "event": {}, "explicit": {},
	"extern": {}, "false": {}, "finally": {}, "fixed": {}, "float": {},
	"for": {}, "foreach": {}, "goto": {}, "if": {}, "implicit": {}, "in": {},
	"int": {}, "interface": {}, "internal": {}, "is": {}, "lock": {},
	"long": {}, "namespace": {}, "new": {}, "null": {}, "object": {},
	"operator": {}, "out": {}, "override": {}, "params": {}, "private": {},
	"protected": {}, "public": {}, "readonly": {}, "ref": {}, "return": {},
	"sbyte": {}, "sealed": {}, "short": {}, "sizeof": {}, "stackalloc": {},
	"static": {}, "string": {}, "struct": {}, "switch": {}, "this": {},
	"throw": {}, "true": {}, "try": {}, "typeof": {}, "uint": {}, "ulong": {},
	"unchecked": {}, "unsafe": {}, "ushort": {}, "using": {}, "virtual": {},
	"void": {}, "volatile": {}, "while": {},
}

// SafeIdentifier Pascal-cases name and escapes C# reserved words with the
// @ prefix. Deterministic and total over all printable input.
func SafeIdentifier(name string) string {
	pascal := ToPascalCase(name)
	if _, ok := csharpReserved[strings.ToLower(pascal)]; ok {
		return "@" + pascal
	}
	return pascal
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
