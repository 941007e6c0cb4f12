package ipintel

import "github.com/51Degrees/ip-intelligence-go/internal/dataset"

type (
	Diagnostic       = dataset.Diagnostic
	DiagnosticReport = dataset.DiagnosticReport
	Severity         = dataset.Severity
	DiagStructure    = dataset.DiagStructure
)

const (
	SevInfo    = dataset.SevInfo
	SevWarning = dataset.SevWarning
	SevError   = dataset.SevError
)

// Diagnose borrows the active generation and runs a structural scan over
// it, reporting every inconsistency it finds rather than stopping at the
// first (see internal/dataset.Dataset.Diagnose).
func (m *Manager) Diagnose() *DiagnosticReport {
	h := m.borrow()
	defer h.Release()
	return h.Resource().Diagnose()
}
