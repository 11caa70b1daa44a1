package quality

// DimensionSpec describes one scored dimension and how much data it needs.
type DimensionSpec struct {
	Code                  string
	Name                  string
	Chapter               string
	ExpectedQuestions     int
	ExpectedSubIndicators int
}

// Chapter names group related dimensions in reports.
const (
	ChapterGrowthEngine         = "Growth Engine"
	ChapterPerformanceHealth    = "Performance & Health"
	ChapterPeopleLeadership     = "People & Leadership"
	ChapterResilienceSafeguards = "Resilience & Safeguards"
)

// DefaultCatalog returns the twelve business-health dimensions in report
// order.
func DefaultCatalog() []DimensionSpec {
	return []DimensionSpec{
		{Code: "STR", Name: "Strategy", Chapter: ChapterGrowthEngine, ExpectedQuestions: 7, ExpectedSubIndicators: 5},
		{Code: "SAL", Name: "Sales", Chapter: ChapterGrowthEngine, ExpectedQuestions: 8, ExpectedSubIndicators: 5},
		{Code: "MKT", Name: "Marketing", Chapter: ChapterGrowthEngine, ExpectedQuestions: 7, ExpectedSubIndicators: 5},
		{Code: "CXP", Name: "Customer Experience", Chapter: ChapterPerformanceHealth, ExpectedQuestions: 6, ExpectedSubIndicators: 4},
		{Code: "OPS", Name: "Operations", Chapter: ChapterPerformanceHealth, ExpectedQuestions: 8, ExpectedSubIndicators: 5},
		{Code: "FIN", Name: "Financials", Chapter: ChapterPerformanceHealth, ExpectedQuestions: 9, ExpectedSubIndicators: 6},
		{Code: "HRS", Name: "Human Resources", Chapter: ChapterPeopleLeadership, ExpectedQuestions: 7, ExpectedSubIndicators: 5},
		{Code: "LDG", Name: "Leadership & Governance", Chapter: ChapterPeopleLeadership, ExpectedQuestions: 6, ExpectedSubIndicators: 4},
		{Code: "TIN", Name: "Technology & Innovation", Chapter: ChapterResilienceSafeguards, ExpectedQuestions: 6, ExpectedSubIndicators: 4},
		{Code: "IDV", Name: "Intellectual Property & Data", Chapter: ChapterResilienceSafeguards, ExpectedQuestions: 5, ExpectedSubIndicators: 3},
		{Code: "ESG", Name: "Sustainability", Chapter: ChapterResilienceSafeguards, ExpectedQuestions: 5, ExpectedSubIndicators: 3},
		{Code: "RMS", Name: "Risk Management", Chapter: ChapterResilienceSafeguards, ExpectedQuestions: 6, ExpectedSubIndicators: 4},
	}
}

// DefaultCriticalDimensions lists the dimensions whose absence blocks a
// report: strategy, sales, financials and risk management.
func DefaultCriticalDimensions() []string {
	return []string{"STR", "SAL", "FIN", "RMS"}
}
