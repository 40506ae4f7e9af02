package naming

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dot separated", in: "Storage.Slotting", want: "StorageSlotting"},
		{name: "dot separated two", in: "Failure.Resolution", want: "FailureResolution"},
		{name: "already pascal", in: "WeightedScoreSlotting", want: "WeightedScoreSlotting"},
		{name: "mixed caps preserved", in: "MaxHUWeight", want: "MaxHUWeight"},
		{name: "space separated", in: "empty hu selection", want: "EmptyHuSelection"},
		{name: "snake case", in: "plant_area", want: "PlantArea"},
		{name: "colon and dash", in: "Decide:Storage-Location", want: "DecideStorageLocation"},
		{name: "run of separators", in: "a..__--b", want: "AB"},
		{name: "leading separator", in: ".slotting", want: "Slotting"},
		{name: "digits kept", in: "zone2.pick", want: "Zone2Pick"},
		{name: "empty", in: "", want: ""},
		{name: "separators only", in: "..--", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPascalCase(tt.in); got != tt.want {
				t.Errorf("ToPascalCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Storage.Slotting", want: "storageSlotting"},
		{in: "maxCandidates", want: "maxCandidates"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := ToCamelCase(tt.in); got != tt.want {
			t.Errorf("ToCamelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToCSharpType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "bool", want: "bool"},
		{in: "int", want: "int"},
		{in: "decimal", want: "decimal"},
		{in: "string", want: "string"},
		{in: "enum", want: "string"},
		{in: "timestamp", want: "object"},
		{in: "", want: "object"},
	}

	for _, tt := range tests {
		if got := ToCSharpType(tt.in); got != tt.want {
			t.Errorf("ToCSharpType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "reserved word escaped", in: "class", want: "@Class"},
		{name: "reserved after pascal", in: "name.space", want: "@NameSpace"},
		{name: "non-reserved untouched", in: "Policy.WeightLimit", want: "PolicyWeightLimit"},
		{name: "int reserved", in: "int", want: "@Int"},
		{name: "plain", in: "maxCandidates", want: "MaxCandidates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeIdentifier(tt.in); got != tt.want {
				t.Errorf("SafeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Properties: every normalizer is deterministic and total over arbitrary
// strings, and PascalCase output contains only alphanumerics.
func TestNamingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ToPascalCase is deterministic", prop.ForAll(
		func(s string) bool {
			return ToPascalCase(s) == ToPascalCase(s)
		},
		gen.AnyString(),
	))

	properties.Property("ToPascalCase emits only alphanumerics", prop.ForAll(
		func(s string) bool {
			for _, r := range ToPascalCase(s) {
				if !isAlphanumeric(r) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("ToPascalCase is idempotent on its own output", prop.ForAll(
		func(s string) bool {
			once := ToPascalCase(s)
			return ToPascalCase(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("SafeIdentifier never returns a bare reserved word", prop.ForAll(
		func(s string) bool {
			id := SafeIdentifier(s)
			_, reserved := csharpReserved[strings.ToLower(id)]
			return !reserved
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
