package academics

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

var (
	termTag  = "term"
	termText = "invalid term"

	attStatusTag  = "attendancestatus"
	attStatusText = "invalid attendance status"

	scoreBoundsTag  = "scorebounds"
	scoreBoundsText = "score must be between 0 and max_score"

	maxScoreTag  = "maxscore"
	maxScoreText = "max_score must be greater than 0"

	gradeStatusTag  = "gradestatus"
	gradeStatusText = "invalid grade status"
)

func init() {
	_ = core.Validate.RegisterValidation(termTag, termValidation)
	core.RegisterCustomTranslation(termTag, termText)

	_ = core.Validate.RegisterValidation(attStatusTag, attendanceStatusValidation)
	core.RegisterCustomTranslation(attStatusTag, attStatusText)

	core.Validate.RegisterStructValidation(gradeStructValidation, NewGrade{}, UpdateGrade{})
	core.RegisterCustomTranslation(scoreBoundsTag, scoreBoundsText)
	core.RegisterCustomTranslation(maxScoreTag, maxScoreText)
	core.RegisterCustomTranslation(gradeStatusTag, gradeStatusText)
}

func termValidation(fl validator.FieldLevel) bool {
	return Term(fl.Field().String()).IsValid()
}

func attendanceStatusValidation(fl validator.FieldLevel) bool {
	return AttendanceStatus(fl.Field().String()).IsValid()
}

// gradeStructValidation rejects out-of-range scores before any store
// mutation: 0 <= score <= max_score and max_score > 0.
func gradeStructValidation(sl validator.StructLevel) {
	var score, maxScore decimal.Decimal
	switch g := sl.Current().Interface().(type) {
	case NewGrade:
		score, maxScore = g.Score, g.MaxScore
	case UpdateGrade:
		if g.Status != nil && *g.Status != GradeDraft && *g.Status != GradePublished {
			sl.ReportError(*g.Status, "status", "Status", gradeStatusTag, "")
		}
		if g.Score == nil || g.MaxScore == nil {
			return // partial updates are completed from the stored grade before validation
		}
		score, maxScore = *g.Score, *g.MaxScore
	default:
		return
	}

	if maxScore.LessThanOrEqual(decimal.Zero) {
		sl.ReportError(maxScore, "max_score", "MaxScore", maxScoreTag, "")
		return
	}
	if score.IsNegative() || score.GreaterThan(maxScore) {
		sl.ReportError(score, "score", "Score", scoreBoundsTag, "")
	}
}
