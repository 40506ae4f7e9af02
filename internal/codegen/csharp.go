package codegen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/logisq/xyronq/internal/naming"
	"github.com/logisq/xyronq/internal/types"
)

const generatedHeader = "// Auto-generated from XyronQ metadata — DO NOT EDIT"

// scope name verb prefixes stripped when deriving façade method names
var facadePrefixes = []string{"Decide", "Select", "Resolve"}

func renderDomainFacade(domain types.DecisionDomain, ns string) string {
	domainName := naming.ToNamespaceSegment(domain.Name)

	methods := make([]string, 0, len(domain.Scopes))
	for _, scope := range domain.Scopes {
		methodName := naming.ToPascalCase(scope.Name)
		for _, prefix := range facadePrefixes {
			methodName = strings.TrimPrefix(methodName, prefix)
		}
		summary := scope.Description
		if summary == "" {
			summary = scope.Name
		}
		methods = append(methods, strings.Join([]string{
			"    /// <summary>",
			"    /// " + summary,
			"    /// </summary>",
			fmt.Sprintf("    Task<DecisionResult> %sAsync(", methodName),
			"        DecisionInput input,",
			"        DecisionContext ctx,",
			"        CancellationToken ct = default);",
		}, "\n"))
	}

	return strings.Join([]string{
		generatedHeader,
		fmt.Sprintf("// Domain: %s v%s", domain.Name, domain.Version),
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// Decision façade for %s.", domain.Name),
		"/// " + domain.Description,
		"/// </summary>",
		fmt.Sprintf("public interface I%sDecision", domainName),
		"{",
		strings.Join(methods, "\n\n"),
		"}",
		"",
	}, "\n")
}

func renderFilterShapes(domain types.DecisionDomain, shapes []filterShape, ns string) string {
	domainName := naming.ToNamespaceSegment(domain.Name)

	entries := make([]string, 0, len(shapes))
	for _, shape := range shapes {
		fieldName := "Default"
		keysArray := "Array.Empty<string>()"
		if len(shape.keys) > 0 {
			fieldName = naming.ToPascalCase(strings.Join(shape.keys, "_"))
			quoted := make([]string, 0, len(shape.keys))
			for _, k := range shape.keys {
				quoted = append(quoted, fmt.Sprintf("%q", k))
			}
			keysArray = fmt.Sprintf("new[] { %s }", strings.Join(quoted, ", "))
		}
		entries = append(entries, strings.Join([]string{
			fmt.Sprintf("    /// <summary>Shape: %s (priority %d)</summary>", shape.id, shape.priorityClass),
			fmt.Sprintf("    public static readonly ContextFilterShape %s =", fieldName),
			fmt.Sprintf("        new(%q, %s, PriorityClass: %d);", shape.id, keysArray, shape.priorityClass),
		}, "\n"))
	}

	return strings.Join([]string{
		generatedHeader,
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// Context filter shape descriptors for %s.", domain.Name),
		"/// WMS computes specificity from these shapes — specificity is never hardcoded.",
		"/// </summary>",
		fmt.Sprintf("public static class %sFilterShapes", domainName),
		"{",
		strings.Join(entries, "\n\n"),
		"}",
		"",
	}, "\n")
}

func renderStrategyInterface(strat definitionInfo, ns string) string {
	name := naming.SafeIdentifier(strat.name)
	paramType := "EmptyParameters"
	if len(strat.params) > 0 {
		paramType = name + "Parameters"
	}

	return strings.Join([]string{
		generatedHeader,
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// Strategy: %s", strat.name),
		"/// " + strat.description,
		"/// </summary>",
		fmt.Sprintf("public interface I%sStrategy : IStrategy", name),
		"{",
		"    /// <summary>Stable strategy identifier from XyronQ metadata.</summary>",
		fmt.Sprintf("    const string StrategyId = %q;", strat.id),
		"",
		"    Task<StrategyResult> ExecuteAsync(",
		"        StrategyInput input,",
		fmt.Sprintf("        %s parameters,", paramType),
		"        CancellationToken ct = default);",
		"}",
		"",
	}, "\n")
}

func renderPolicyInterface(pol definitionInfo, ns string) string {
	name := naming.SafeIdentifier(pol.name)
	paramType := "EmptyParameters"
	if len(pol.params) > 0 {
		paramType = name + "Parameters"
	}

	return strings.Join([]string{
		generatedHeader,
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// Policy: %s", pol.name),
		"/// " + pol.description,
		"/// </summary>",
		fmt.Sprintf("public interface I%sPolicy : IPolicy", name),
		"{",
		"    /// <summary>Stable policy identifier from XyronQ metadata.</summary>",
		fmt.Sprintf("    const string PolicyId = %q;", pol.id),
		"",
		"    Task<PolicyResult> ApplyAsync(",
		"        PolicyContext ctx,",
		fmt.Sprintf("        %s parameters,", paramType),
		"        CancellationToken ct = default);",
		"}",
		"",
	}, "\n")
}

func renderParameterRecord(entityName string, params types.ParameterMap, ns, kind string) string {
	properties := make([]string, 0, len(params))
	for _, key := range sortedParamKeys(params) {
		param := params[key]
		csharpType := naming.ToCSharpType(string(param.Type))
		propName := naming.SafeIdentifier(key)
		// Reference types need 'required' to satisfy nullable analysis.
		modifier := ""
		if csharpType == "string" || strings.HasSuffix(csharpType, "[]") {
			modifier = "required "
		}
		properties = append(properties, strings.Join([]string{
			fmt.Sprintf("    /// <summary>%s (%s)</summary>", key, param.Type),
			fmt.Sprintf("    public %s%s %s { get; init; }", modifier, csharpType, propName),
		}, "\n"))
	}

	return strings.Join([]string{
		generatedHeader,
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// %s parameters for %s.", kind, entityName),
		"/// </summary>",
		fmt.Sprintf("public sealed record %sParameters", entityName),
		"{",
		strings.Join(properties, "\n\n"),
		"}",
		"",
	}, "\n")
}

func renderParameterSchema(entityName string, params types.ParameterMap, ns, kind string) string {
	specs := make([]string, 0, len(params))
	for _, key := range sortedParamKeys(params) {
		param := params[key]
		specs = append(specs, strings.Join([]string{
			fmt.Sprintf("    /// <summary>%s (%s)</summary>", key, param.Type),
			fmt.Sprintf("    public static readonly ParameterSpec %s =", naming.SafeIdentifier(key)),
			"        new(",
			fmt.Sprintf("        %q,", key),
			fmt.Sprintf("        Type: %q,", string(param.Type)),
			"        Required: true",
			"    );",
		}, "\n"))
	}

	return strings.Join([]string{
		generatedHeader,
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		fmt.Sprintf("/// Parameter validation schema for %s (%s).", entityName, kind),
		"/// Machine-readable metadata for runtime validation and UI tooling.",
		"/// </summary>",
		fmt.Sprintf("public static class %sParameterSchema", entityName),
		"{",
		strings.Join(specs, "\n\n"),
		"}",
		"",
	}, "\n")
}

func renderMetadata(domain types.DecisionDomain, ns string, generatedAt time.Time) string {
	return strings.Join([]string{
		generatedHeader,
		"// Regeneration replaces this file. Do not add handwritten code here.",
		"",
		"using LogisQ.Contracts;",
		"",
		fmt.Sprintf("namespace %s;", ns),
		"",
		"/// <summary>",
		"/// Generation metadata for drift detection and version tracking.",
		"/// </summary>",
		"public static class Generated",
		"{",
		"    /// <summary>Source decision domain.</summary>",
		fmt.Sprintf("    public const string DomainName = %q;", domain.Name),
		"",
		"    /// <summary>Domain version at generation time.</summary>",
		fmt.Sprintf("    public const string DomainVersion = %q;", domain.Version),
		"",
		"    /// <summary>SHA-256 hash of the source manifest data.</summary>",
		fmt.Sprintf("    public const string ManifestHash = %q;", DomainHash(domain)),
		"",
		"    /// <summary>Timestamp of code generation.</summary>",
		fmt.Sprintf("    public const string GeneratedAt = %q;", generatedAt.UTC().Format(time.RFC3339)),
		"}",
		"",
	}, "\n")
}

func renderCsproj(domains []types.DecisionDomain, generatedAt time.Time) string {
	versions := make([]string, 0, len(domains))
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		versions = append(versions, d.Version)
		names = append(names, d.Name)
	}
	sort.Strings(versions)
	maxVersion := "1.0.0"
	if len(versions) > 0 {
		maxVersion = versions[len(versions)-1]
	}

	return strings.Join([]string{
		`<Project Sdk="Microsoft.NET.Sdk">`,
		``,
		`  <PropertyGroup>`,
		`    <TargetFramework>net9.0</TargetFramework>`,
		`    <ImplicitUsings>enable</ImplicitUsings>`,
		`    <Nullable>enable</Nullable>`,
		``,
		`    <!-- NuGet Package Metadata -->`,
		fmt.Sprintf(`    <PackageId>%s</PackageId>`, packageName),
		fmt.Sprintf(`    <Version>%s</Version>`, maxVersion),
		`    <Authors>XyronQ Code Generator</Authors>`,
		`    <Company>LogisQ</Company>`,
		fmt.Sprintf(`    <Description>Auto-generated decision contracts from XyronQ policy metadata. Contains typed interfaces, sealed records, filter shapes, and parameter schemas for: %s. DO NOT EDIT — regenerate from XyronQ.</Description>`, strings.Join(names, ", ")),
		fmt.Sprintf(`    <Copyright>Copyright © %d LogisQ</Copyright>`, generatedAt.UTC().Year()),
		`    <PackageTags>LogisQ;WES;Decisions;Contracts;CodeGen;XyronQ</PackageTags>`,
		`    <PackageReadmeFile>README.md</PackageReadmeFile>`,
		``,
		`    <!-- Build Configuration -->`,
		`    <GeneratePackageOnBuild>true</GeneratePackageOnBuild>`,
		`    <GenerateDocumentationFile>true</GenerateDocumentationFile>`,
		`    <NoWarn>$(NoWarn);CS1591</NoWarn>`,
		`  </PropertyGroup>`,
		``,
		`  <ItemGroup>`,
		`    <None Include="README.md" Pack="true" PackagePath="\" />`,
		`  </ItemGroup>`,
		``,
		`  <ItemGroup>`,
		`    <ProjectReference Include="../LogisQ.Contracts.Core/LogisQ.Contracts.Core.csproj" />`,
		`  </ItemGroup>`,
		``,
		`</Project>`,
		``,
	}, "\n")
}

func renderDirectoryBuildProps() string {
	return strings.Join([]string{
		`<!-- C2 Constraint: Assembly reference direction enforcement -->`,
		`<!-- This file is auto-generated by XyronQ. DO NOT EDIT. -->`,
		`<!-- Generated contracts must NEVER reference WMS implementation assemblies. -->`,
		`<Project>`,
		`  <PropertyGroup>`,
		`    <!-- Treat reference direction violations as build errors -->`,
		`    <TreatWarningsAsErrors>true</TreatWarningsAsErrors>`,
		`  </PropertyGroup>`,
		``,
		`  <!-- Forbidden references: if any of these are added, the build will fail -->`,
		`  <!-- This list is maintained by CI; see ci/check-assembly-references.sh -->`,
		`</Project>`,
		``,
	}, "\n")
}

func renderReadme(domains []types.DecisionDomain, generatedAt time.Time) string {
	rows := make([]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, fmt.Sprintf("| %s | %s | %d |", d.Name, d.Version, len(d.Scopes)))
	}

	return strings.Join([]string{
		fmt.Sprintf("# %s", packageName),
		``,
		`Auto-generated typed decision contracts from [XyronQ](https://xyronq.logisq.com) policy metadata.`,
		``,
		"> ⚠️ **DO NOT EDIT** — regenerate from XyronQ Dashboard → Export C#",
		``,
		`## Domains`,
		``,
		`| Domain | Version | Scopes |`,
		`|---|---|---|`,
		strings.Join(rows, "\n"),
		``,
		`## Usage`,
		``,
		"```csharp",
		`// Reference this package:`,
		fmt.Sprintf(`// dotnet add package %s`, packageName),
		``,
		`// Implement a strategy:`,
		`public class MyStrategy : IWeightedScoreStrategy`,
		`{`,
		`    public Task<StrategyResult> ExecuteAsync(`,
		`        StrategyInput input,`,
		`        StrategyWeightedScoreParameters parameters,`,
		`        CancellationToken ct) { /* ... */ }`,
		`}`,
		"```",
		``,
		fmt.Sprintf("Generated at: %s", generatedAt.UTC().Format(time.RFC3339)),
		``,
	}, "\n")
}
