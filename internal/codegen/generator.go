// Package codegen turns a decision domain graph into C# contract
// artifacts: one capability interface per unique strategy and policy,
// parameter records and schemas for entities that declare parameters, a
// per-domain decision façade, a filter-shape catalog, and drift-detection
// metadata. Output is pure text keyed by filename; the generator never
// reads back what it emits.
package codegen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/logisq/xyronq/internal/naming"
	"github.com/logisq/xyronq/internal/types"
)

const packageName = "LogisQ.Contracts.Decisions"

// Output is the result of one generation run: file contents keyed by
// relative path, plus warnings about ambiguous source configuration.
type Output struct {
	Files    map[string]string
	Warnings []string
}

// definitionInfo is one catalog entry for a strategy or policy name.
// First occurrence wins: the id, description and parameters come from
// the first rule that used the name.
type definitionInfo struct {
	id          string
	name        string
	description string
	params      types.ParameterMap
}

// filterShape is one distinct set of context filter dimension keys seen
// across a domain's rules.
type filterShape struct {
	id            string
	keys          []string
	priorityClass int
}

// catalogs holds the deduplicated strategy, policy and filter-shape sets
// for one domain, in first-seen order.
type catalogs struct {
	strategies []definitionInfo
	policies   []definitionInfo
	shapes     []filterShape
	warnings   []string
}

// Generate produces the contract artifact set for one domain.
// generatedAt stamps the metadata file; passing it in keeps the output
// reproducible for a fixed input.
func Generate(domain types.DecisionDomain, generatedAt time.Time) Output {
	cat := collect(domain)
	ns := naming.ToNamespaceSegment(domain.Name)
	fullNs := packageName + "." + ns

	files := make(map[string]string)
	files[fmt.Sprintf("I%sDecision.cs", ns)] = renderDomainFacade(domain, fullNs)
	files[fmt.Sprintf("%sFilterShapes.cs", ns)] = renderFilterShapes(domain, cat.shapes, fullNs)

	for _, strat := range cat.strategies {
		name := naming.SafeIdentifier(strat.name)
		files[fmt.Sprintf("I%sStrategy.cs", name)] = renderStrategyInterface(strat, fullNs)
		if len(strat.params) > 0 {
			files[fmt.Sprintf("%sParameters.cs", name)] = renderParameterRecord(name, strat.params, fullNs, "Strategy")
			files[fmt.Sprintf("%sParameterSchema.cs", name)] = renderParameterSchema(name, strat.params, fullNs, "Strategy")
		}
	}
	for _, pol := range cat.policies {
		name := naming.SafeIdentifier(pol.name)
		files[fmt.Sprintf("I%sPolicy.cs", name)] = renderPolicyInterface(pol, fullNs)
		if len(pol.params) > 0 {
			files[fmt.Sprintf("%sParameters.cs", name)] = renderParameterRecord(name, pol.params, fullNs, "Policy")
			files[fmt.Sprintf("%sParameterSchema.cs", name)] = renderParameterSchema(name, pol.params, fullNs, "Policy")
		}
	}

	files["_Generated.g.cs"] = renderMetadata(domain, fullNs, generatedAt)

	return Output{Files: files, Warnings: cat.warnings}
}

// GenerateAll produces one artifact tree covering every domain, each
// under its own namespace directory, plus the package-level descriptors.
func GenerateAll(domains []types.DecisionDomain, generatedAt time.Time) Output {
	files := make(map[string]string)
	var warnings []string

	for _, domain := range domains {
		ns := naming.ToNamespaceSegment(domain.Name)
		out := Generate(domain, generatedAt)
		for name, content := range out.Files {
			files[ns+"/"+name] = content
		}
		warnings = append(warnings, out.Warnings...)
	}

	files[packageName+".csproj"] = renderCsproj(domains, generatedAt)
	files["Directory.Build.props"] = renderDirectoryBuildProps()
	files["README.md"] = renderReadme(domains, generatedAt)

	return Output{Files: files, Warnings: warnings}
}

// collect walks every rule once and builds the three catalogs. Names
// dedupe first-occurrence-wins; a later occurrence whose parameter key
// set disagrees with the first is shadowed silently in the output but
// surfaced as a warning.
func collect(domain types.DecisionDomain) catalogs {
	var cat catalogs
	strategySeen := make(map[string]int)
	policySeen := make(map[string]int)
	shapeSeen := make(map[string]bool)

	for _, scope := range domain.Scopes {
		for _, rule := range scope.Rules {
			if rule.Strategy != nil {
				s := rule.Strategy
				if idx, ok := strategySeen[s.Name]; ok {
					if !sameShape(cat.strategies[idx].params, s.Parameters) {
						cat.warnings = append(cat.warnings, shapeWarning("strategy", s.Name, scope.Name))
					}
				} else {
					strategySeen[s.Name] = len(cat.strategies)
					cat.strategies = append(cat.strategies, definitionInfo{
						id:          string(s.ID),
						name:        s.Name,
						description: s.Description,
						params:      s.Parameters,
					})
				}
			}

			for _, p := range rule.Policies {
				if idx, ok := policySeen[p.Name]; ok {
					if !sameShape(cat.policies[idx].params, p.Parameters) {
						cat.warnings = append(cat.warnings, shapeWarning("policy", p.Name, scope.Name))
					}
					continue
				}
				policySeen[p.Name] = len(cat.policies)
				cat.policies = append(cat.policies, definitionInfo{
					id:          string(p.ID),
					name:        p.Name,
					description: p.Description,
					params:      p.Parameters,
				})
			}

			shape := shapeOf(rule.ContextFilter)
			if !shapeSeen[shape.id] {
				shapeSeen[shape.id] = true
				cat.shapes = append(cat.shapes, shape)
			}
		}
	}
	return cat
}

func shapeOf(filter types.ContextFilter) filterShape {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	id := "shape:default"
	if len(keys) > 0 {
		id = "shape:" + strings.Join(keys, "+")
	}
	return filterShape{id: id, keys: keys, priorityClass: len(keys)}
}

// sameShape compares two parameter maps by key set only; values and
// descriptions may differ without being a drift risk.
func sameShape(a, b types.ParameterMap) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func shapeWarning(kind, name, scopeName string) string {
	return fmt.Sprintf("%s %q in scope %q declares a different parameter shape than an earlier definition with the same name; the first definition wins", kind, name, scopeName)
}

// sortedParamKeys gives a stable iteration order over a parameter map.
func sortedParamKeys(params types.ParameterMap) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
