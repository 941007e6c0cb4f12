package dataset

import (
	"fmt"
)

// Severity classifies how serious a diagnostic finding is.
type Severity int

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "info"
	}
}

// DiagStructure names the collection or record kind a Diagnostic concerns.
type DiagStructure string

const (
	StructComponent    DiagStructure = "component"
	StructProperty     DiagStructure = "property"
	StructPropertyType DiagStructure = "propertyType"
	StructValue        DiagStructure = "value"
)

// Diagnostic is a single structural finding produced by Dataset.Diagnose.
type Diagnostic struct {
	Severity  Severity
	Structure DiagStructure
	Index     uint32
	Message   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s[%d]: %s", d.Severity, d.Structure, d.Index, d.Message)
}

// DiagSummary tallies a DiagnosticReport's findings by severity.
type DiagSummary struct {
	Errors   int
	Warnings int
	Info     int
}

// DiagnosticReport collects every finding a Diagnose pass produces. Unlike
// the dataset's normal bootstrap (which fails fast on the first corrupt
// record), Diagnose walks every directly-indexable collection and reports
// everything it finds wrong, for operators auditing a data set file before
// deploying it.
type DiagnosticReport struct {
	Diagnostics []Diagnostic
	Summary     DiagSummary
}

func newDiagnosticReport() *DiagnosticReport { return &DiagnosticReport{} }

func (r *DiagnosticReport) add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	case SevInfo:
		r.Summary.Info++
	}
}

// HasErrors reports whether any error-severity finding was recorded.
func (r *DiagnosticReport) HasErrors() bool { return r.Summary.Errors > 0 }

// HasAnyIssues reports whether anything at all was recorded, including
// warnings and info-level findings.
func (r *DiagnosticReport) HasAnyIssues() bool { return len(r.Diagnostics) > 0 }

// Diagnose walks every directly-indexable collection of an already-open
// Dataset and reports structural inconsistencies: unresolvable name
// offsets, out-of-range cross-references between collections, and
// propertyTypes ordering violations (the collection must stay sorted by
// NameOffset for PropertyTypeRecord's binary search to work).
//
// Profiles and profile groups are not walked here: which profile-offset
// entries are bare offsets versus group offsets is only known from a graph
// leaf's IsGroup flag, so an exhaustive walk would require a full graph
// traversal per component/IP-version pair rather than a single linear scan
// of one collection. Results' own FromIP/FromEvidence path already
// resolves (and would surface an error for) every profile it actually
// visits.
func (ds *Dataset) Diagnose() *DiagnosticReport {
	report := newDiagnosticReport()

	componentCount := uint32(len(ds.components))
	for i, c := range ds.components {
		if _, err := ds.stringAt(c.NameOffset); err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructComponent, Index: uint32(i),
				Message: fmt.Sprintf("name offset %d does not resolve: %v", c.NameOffset, err),
			})
		}
	}

	propCount := ds.properties.Count()
	for i := uint32(0); i < propCount; i++ {
		p, err := ds.property(i)
		if err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructProperty, Index: i,
				Message: fmt.Sprintf("failed to decode: %v", err),
			})
			continue
		}
		if p.ComponentIndex >= componentCount {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructProperty, Index: i,
				Message: fmt.Sprintf("componentIndex %d exceeds component count %d", p.ComponentIndex, componentCount),
			})
		}
		if _, err := ds.stringAt(p.NameOffset); err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructProperty, Index: i,
				Message: fmt.Sprintf("name offset %d does not resolve: %v", p.NameOffset, err),
			})
		}
	}

	var prevTypeOffset uint32
	for i, pt := range ds.propertyTypes {
		if i > 0 && pt.NameOffset < prevTypeOffset {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructPropertyType, Index: uint32(i),
				Message: "propertyTypes collection is not sorted ascending by NameOffset; FindPropertyType binary search would misbehave",
			})
		}
		prevTypeOffset = pt.NameOffset
		if _, err := ds.stringAt(pt.NameOffset); err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructPropertyType, Index: uint32(i),
				Message: fmt.Sprintf("name offset %d does not resolve: %v", pt.NameOffset, err),
			})
		}
	}

	valCount := ds.values.Count()
	for i := uint32(0); i < valCount; i++ {
		v, err := ds.Value(i)
		if err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructValue, Index: i,
				Message: fmt.Sprintf("failed to decode: %v", err),
			})
			continue
		}
		if v.PropertyIndex >= propCount {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructValue, Index: i,
				Message: fmt.Sprintf("propertyIndex %d exceeds property count %d", v.PropertyIndex, propCount),
			})
		}
		if _, err := ds.valueRaw(v); err != nil {
			report.add(Diagnostic{
				Severity: SevError, Structure: StructValue, Index: i,
				Message: fmt.Sprintf("name offset %d does not resolve: %v", v.NameOffset, err),
			})
		}
	}

	if !report.HasAnyIssues() {
		report.add(Diagnostic{
			Severity: SevInfo, Structure: StructComponent, Index: 0,
			Message: fmt.Sprintf("%d components, %d properties, %d values: no structural issues found", componentCount, propCount, valCount),
		})
	}

	return report
}
