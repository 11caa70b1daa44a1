package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizhealth/pkg/domain"
)

var fixedNow = time.Date(2025, 6, 2, 14, 30, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type TrackerSuite struct {
	suite.Suite
	runID domain.RunID
	cfg   Config
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.runID = domain.NewRunID(time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC))
	s.cfg = Config{CriticalDimensions: DefaultCriticalDimensions(), Clock: fixedClock}
}

func (s *TrackerSuite) newState() State {
	return NewState(s.runID, s.cfg)
}

func (s *TrackerSuite) TestInitializeDimension() {
	s.Run("registers complete dimension with zero counts", func() {
		st := s.newState().InitializeDimension("STR", "Strategy", 7, 5)
		d, ok := st.Dimension("STR")
		s.Require().True(ok)
		s.Equal(DimensionComplete, d.Status)
		s.Equal(7, d.QuestionsExpected)
		s.Equal(5, d.SubIndicatorsExpected)
		s.Zero(d.QuestionsFound)
		s.Empty(st.Issues())
	})

	s.Run("codes are case and space insensitive", func() {
		st := s.newState().InitializeDimension(" str ", "Strategy", 7, 5)
		_, ok := st.Dimension("STR")
		s.True(ok)
	})

	s.Run("catalog registers twelve dimensions in order", func() {
		audit := s.newState().InitializeCatalog(DefaultCatalog()).Finalize()
		s.Require().Len(audit.Dimensions, 12)
		s.Equal("STR", audit.Dimensions[0].Code)
		s.Equal("RMS", audit.Dimensions[11].Code)
		s.Equal(StatusPass, audit.Status)
	})
}

func (s *TrackerSuite) TestRecordQuestionsFound() {
	s.Run("shortfall makes dimension partial with one warning", func() {
		st := s.newState().InitializeDimension("STR", "Strategy", 7, 5)
		st = st.RecordQuestionsFound("STR", 5)

		d, _ := st.Dimension("STR")
		s.Equal(DimensionPartial, d.Status)
		s.Equal(5, d.QuestionsFound)

		issues := st.Issues()
		s.Require().Len(issues, 1)
		s.Equal(SeverityWarning, issues[0].Severity)
		s.Equal("STR", issues[0].Code)
		s.Contains(issues[0].Message, "STR")
		s.Equal(2, issues[0].Details["missing"])
		s.Len(d.Issues, 1)
	})

	s.Run("meeting expectation keeps dimension complete", func() {
		st := s.newState().InitializeDimension("SAL", "Sales", 8, 5).RecordQuestionsFound("SAL", 8)
		d, _ := st.Dimension("SAL")
		s.Equal(DimensionComplete, d.Status)
		s.Empty(st.Issues())
	})

	s.Run("unknown dimension logs info only", func() {
		st := s.newState().RecordQuestionsFound("XYZ", 3)
		issues := st.Issues()
		s.Require().Len(issues, 1)
		s.Equal(SeverityInfo, issues[0].Severity)
		_, ok := st.Dimension("XYZ")
		s.False(ok)
	})

	s.Run("warning never aborts in strict mode", func() {
		s.cfg.StrictMode = true
		st := s.newState().InitializeDimension("STR", "Strategy", 7, 5).RecordQuestionsFound("STR", 0)
		s.Len(st.Issues(), 1)
	})
}

func (s *TrackerSuite) TestRecordSubIndicators() {
	s.Run("zero generated skips critical dimension as critical", func() {
		st := s.newState().InitializeDimension("FIN", "Financials", 9, 6)
		st, err := st.RecordSubIndicators("FIN", 0)
		s.Require().NoError(err)
		d, _ := st.Dimension("FIN")
		s.Equal(DimensionSkipped, d.Status)
		s.Equal(SeverityCritical, st.Issues()[0].Severity)
	})

	s.Run("zero generated skips other dimension as warning", func() {
		st := s.newState().InitializeDimension("ESG", "Sustainability", 5, 3)
		st, err := st.RecordSubIndicators("ESG", 0)
		s.Require().NoError(err)
		d, _ := st.Dimension("ESG")
		s.Equal(DimensionSkipped, d.Status)
		s.Equal(SeverityWarning, st.Issues()[0].Severity)
	})

	s.Run("shortfall makes dimension partial", func() {
		st := s.newState().InitializeDimension("OPS", "Operations", 8, 5)
		st, err := st.RecordSubIndicators("OPS", 3)
		s.Require().NoError(err)
		d, _ := st.Dimension("OPS")
		s.Equal(DimensionPartial, d.Status)
		s.Equal(3, d.SubIndicatorsGenerated)
	})

	s.Run("nothing expected means nothing to flag", func() {
		st := s.newState().InitializeDimension("ESG", "Sustainability", 5, 0)
		st, err := st.RecordSubIndicators("ESG", 0)
		s.Require().NoError(err)
		s.Empty(st.Issues())
	})
}

func (s *TrackerSuite) TestMarkDimensionSkipped() {
	s.Run("critical dimension skip fails the audit", func() {
		st := s.newState().InitializeCatalog(DefaultCatalog())
		st, err := st.MarkDimensionSkipped("RMS", "no data")
		s.Require().NoError(err)

		audit := st.Finalize()
		s.Equal(StatusFail, audit.Status)
		s.GreaterOrEqual(audit.Summary.CriticalIssueCount, 1)
		s.Equal(1, audit.Summary.SkippedDimensions)
		s.Contains(audit.Recommendations[0], "Re-run scoring for RMS")
	})

	s.Run("non-critical skip needs review", func() {
		st := s.newState().InitializeCatalog(DefaultCatalog())
		st, err := st.MarkDimensionSkipped("MKT", "module disabled")
		s.Require().NoError(err)
		s.Equal(StatusNeedsReview, st.Finalize().Status)
	})

	s.Run("strict mode aborts on critical skip", func() {
		s.cfg.StrictMode = true
		st := s.newState().InitializeCatalog(DefaultCatalog())
		next, err := st.MarkDimensionSkipped("STR", "no data")
		s.Require().Error(err)
		s.True(IsAbort(err))

		var abort *AbortError
		s.Require().ErrorAs(err, &abort)
		s.Equal(s.runID, abort.RunID)
		s.Equal("STR", abort.Issue.Code)
		// the abort still carries the issue so the run can be finalized
		s.Equal(StatusFail, next.Finalize().Status)
	})
}

func (s *TrackerSuite) TestLogIssue() {
	s.Run("attaches to known dimension", func() {
		st := s.newState().InitializeDimension("SAL", "Sales", 8, 5)
		st, err := st.LogIssue(SeverityInfo, ComponentQuestion, "sal", "optional question unanswered", map[string]any{"question": "SAL-07"})
		s.Require().NoError(err)
		d, _ := st.Dimension("SAL")
		s.Len(d.Issues, 1)
		s.Equal(fixedNow, st.Issues()[0].Timestamp)
		s.False(st.Issues()[0].ID.IsNil())
	})

	s.Run("unknown severity fails closed", func() {
		st, err := s.newState().LogIssue(Severity("FATAL"), ComponentChapter, "GROWTH", "chapter missing", nil)
		s.Require().NoError(err)
		issue := st.Issues()[0]
		s.Equal(SeverityCritical, issue.Severity)
		s.Equal("FATAL", issue.Details["declared_severity"])
	})

	s.Run("unknown component falls back to dimension", func() {
		st, err := s.newState().LogIssue(SeverityInfo, Component("PAGE"), "STR", "x", nil)
		s.Require().NoError(err)
		s.Equal(ComponentDimension, st.Issues()[0].Component)
	})

	s.Run("caller details are copied", func() {
		details := map[string]any{"k": 1}
		st, _ := s.newState().LogIssue(SeverityWarning, ComponentIndicator, "FIN-01", "x", details)
		details["k"] = 2
		s.Equal(1, st.Issues()[0].Details["k"])
	})
}

func (s *TrackerSuite) TestTransitionsDoNotMutateReceiver() {
	base := s.newState().InitializeDimension("STR", "Strategy", 7, 5)
	partial := base.RecordQuestionsFound("STR", 5)
	skipped, _ := partial.MarkDimensionSkipped("STR", "no data")

	d, _ := base.Dimension("STR")
	s.Equal(DimensionComplete, d.Status)
	s.Empty(base.Issues())

	d, _ = partial.Dimension("STR")
	s.Equal(DimensionPartial, d.Status)
	s.Len(partial.Issues(), 1)

	d, _ = skipped.Dimension("STR")
	s.Equal(DimensionSkipped, d.Status)
	s.Len(skipped.Issues(), 2)

	// branching from the same parent must not share the issue log
	a, _ := partial.LogIssue(SeverityInfo, ComponentQuestion, "STR", "a", nil)
	b, _ := partial.LogIssue(SeverityInfo, ComponentQuestion, "STR", "b", nil)
	s.Equal("a", a.Issues()[1].Message)
	s.Equal("b", b.Issues()[1].Message)
}

func (s *TrackerSuite) TestStatusIsMonotone() {
	st := s.newState().InitializeDimension("STR", "Strategy", 7, 5)
	st, _ = st.MarkDimensionSkipped("STR", "no data")
	st = st.RecordQuestionsFound("STR", 7)
	st, _ = st.RecordSubIndicators("STR", 2)

	d, _ := st.Dimension("STR")
	s.Equal(DimensionSkipped, d.Status)
}
